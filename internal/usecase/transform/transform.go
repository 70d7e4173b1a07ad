package transform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/dto"
	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/internal/infrastructure"
	"github.com/andreyxaxa/Photo-Transformer/internal/repo"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase"
	"github.com/andreyxaxa/Photo-Transformer/pkg/imagefind"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
	"github.com/google/uuid"
)

const (
	progressStarted   = 30
	progressMockStep  = 60
	progressGenerated = 70

	_defaultMockStepDelay = 600 * time.Millisecond
)

var errCancelled = errors.New("transformation cancelled")

type Settings struct {
	Mock                  bool
	MockStepDelay         time.Duration
	AllowFallbackOriginal bool
	Prompt                string
}

// TransformUseCase creates jobs and drives each one through its pipeline
// in its own goroutine. The job store is the only state shared with readers.
type TransformUseCase struct {
	jobRepo   repo.JobRepo
	blobRepo  repo.BlobRepo
	retention usecase.RetentionUseCase
	events    usecase.EventsUseCase
	prep      usecase.ImageProcessorUseCase
	gateway   infrastructure.ProviderGateway
	fetcher   infrastructure.ImageFetcher
	logger    logger.Interface

	settings Settings

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

func New(
	jobRepo repo.JobRepo,
	blobRepo repo.BlobRepo,
	retention usecase.RetentionUseCase,
	events usecase.EventsUseCase,
	prep usecase.ImageProcessorUseCase,
	gateway infrastructure.ProviderGateway,
	fetcher infrastructure.ImageFetcher,
	l logger.Interface,
	settings Settings,
) *TransformUseCase {
	if settings.MockStepDelay <= 0 {
		settings.MockStepDelay = _defaultMockStepDelay
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TransformUseCase{
		jobRepo:   jobRepo,
		blobRepo:  blobRepo,
		retention: retention,
		events:    events,
		prep:      prep,
		gateway:   gateway,
		fetcher:   fetcher,
		logger:    l,
		settings:  settings,
		ctx:       ctx,
		cancel:    cancel,
		running:   make(map[string]context.CancelFunc),
	}
}

// Submit creates a processing job for imageID and returns without waiting
// for the pipeline.
func (uc *TransformUseCase) Submit(ctx context.Context, imageID string, params dto.TransformParams) (*entity.Job, error) {
	if imageID == "" {
		return nil, fmt.Errorf("TransformUseCase - Submit: %w", errs.ErrInvalidImageID)
	}

	now := time.Now()

	blob, err := uc.blobRepo.Claim(ctx, imageID, now)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, fmt.Errorf("TransformUseCase - Submit: %w", errs.ErrInvalidImageID)
		}
		return nil, fmt.Errorf("TransformUseCase - Submit - uc.blobRepo.Claim: %w", err)
	}

	params = params.WithDefaults()

	job := &entity.Job{
		ID:                 uuid.NewString(),
		BlobID:             blob.ID,
		Status:             entity.Processing,
		TransformationType: params.TransformationType,
		Amount:             params.Amount,
		Original:           blob.Inline(),
		CreatedAt:          now,
	}

	err = uc.jobRepo.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("TransformUseCase - Submit - uc.jobRepo.Create: %w", err)
	}

	uc.logger.Info("Transformation job started: %s for image %s (%v, amount=%v)",
		job.ID, blob.ID, job.TransformationType, job.Amount)

	jobCtx, cancel := context.WithCancel(uc.ctx)

	uc.mu.Lock()
	uc.running[job.ID] = cancel
	uc.mu.Unlock()

	uc.wg.Add(1)
	go uc.run(jobCtx, job.Clone())

	return job, nil
}

func (uc *TransformUseCase) Status(ctx context.Context, jobID string) (*entity.Job, error) {
	job, err := uc.jobRepo.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("TransformUseCase - Status - uc.jobRepo.Get: %w", err)
	}

	return job, nil
}

// Delete stops the job's pipeline and removes the job, its blob and its
// retention timer. Unknown ids succeed.
func (uc *TransformUseCase) Delete(ctx context.Context, jobID string) error {
	blobID := ""

	job, err := uc.jobRepo.Get(ctx, jobID)
	switch {
	case err == nil:
		blobID = job.BlobID
	case !errors.Is(err, errs.ErrRecordNotFound):
		return fmt.Errorf("TransformUseCase - Delete - uc.jobRepo.Get: %w", err)
	}

	uc.stop(jobID)

	err = uc.retention.Evict(ctx, jobID, blobID)
	if err != nil {
		return fmt.Errorf("TransformUseCase - Delete - uc.retention.Evict: %w", err)
	}

	return nil
}

// Shutdown waits for running pipelines until ctx expires, then cancels
// the rest and waits for them to unwind.
func (uc *TransformUseCase) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		uc.cancel()
		return nil
	case <-ctx.Done():
	}

	uc.cancel()
	<-done

	return nil
}

func (uc *TransformUseCase) stop(jobID string) {
	uc.mu.Lock()
	cancel, ok := uc.running[jobID]
	delete(uc.running, jobID)
	uc.mu.Unlock()

	if ok {
		cancel()
	}
}

func (uc *TransformUseCase) run(ctx context.Context, job *entity.Job) {
	defer uc.wg.Done()
	defer uc.stop(job.ID)

	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error(fmt.Errorf("panic %v", r), "TransformUseCase - run - panic")
			uc.fail(job, "internal error while processing transformation")
		}
	}()

	if !uc.progress(job.ID, progressStarted) {
		return
	}

	var (
		result entity.InlineImage
		err    error
	)

	if uc.settings.Mock {
		result, err = uc.runMock(ctx, job)
	} else {
		result, err = uc.runProvider(ctx, job)
	}

	switch {
	case errors.Is(err, errs.ErrRecordNotFound):
		uc.logger.Debug("job %s was removed while processing", job.ID)
	case err != nil:
		uc.fail(job, err.Error())
	default:
		uc.complete(job, result)
	}
}

func (uc *TransformUseCase) runMock(ctx context.Context, job *entity.Job) (entity.InlineImage, error) {
	uc.logger.Info("MOCK mode enabled; simulating AI transformation for job %s", job.ID)

	if !sleep(ctx, uc.settings.MockStepDelay) {
		return entity.InlineImage{}, uc.cancelled(ctx, job.ID)
	}
	if !uc.progress(job.ID, progressMockStep) {
		return entity.InlineImage{}, errs.ErrRecordNotFound
	}
	if !sleep(ctx, uc.settings.MockStepDelay) {
		return entity.InlineImage{}, uc.cancelled(ctx, job.ID)
	}

	uc.logger.Info("MOCK: returning the original image as the result for job %s", job.ID)

	return job.Original, nil
}

func (uc *TransformUseCase) runProvider(ctx context.Context, job *entity.Job) (entity.InlineImage, error) {
	if err := uc.gateway.Ready(); err != nil {
		return entity.InlineImage{}, err
	}

	input, err := uc.prep.PrepareInput(ctx, job.Original)
	if err != nil {
		uc.logger.Warn("could not prepare provider input for job %s, sending original: %v", job.ID, err)
		input = job.Original
	}

	uc.logger.Info("Calling provider for job %s", job.ID)

	gen, err := uc.gateway.Generate(ctx, dto.GenerationRequest{
		Image:  input,
		Prompt: uc.settings.Prompt,
	})
	if err != nil {
		if ctx.Err() != nil {
			return entity.InlineImage{}, uc.cancelled(ctx, job.ID)
		}
		return entity.InlineImage{}, err
	}

	_, err = uc.jobRepo.Update(context.WithoutCancel(ctx), job.ID, func(j *entity.Job) {
		j.SetProgress(progressGenerated)
		j.Model = gen.Model
		j.Shape = string(gen.Shape)
	})
	if err != nil {
		return entity.InlineImage{}, err
	}

	found, err := imagefind.Find(gen.Payload)
	if err != nil {
		uc.logger.Warn("could not parse provider payload for job %s: %v", job.ID, err)
	}

	switch found.Kind {
	case imagefind.DataURI:
		img, err := entity.ParseDataURI(found.Value)
		if err == nil {
			uc.logger.Info("Provider returned an inline image for job %s", job.ID)
			return img, nil
		}
		uc.logger.Warn("unusable inline image for job %s: %v", job.ID, err)
	case imagefind.RemoteURL:
		img, err := uc.fetcher.Fetch(ctx, found.Value)
		if err != nil {
			if ctx.Err() != nil {
				return entity.InlineImage{}, uc.cancelled(ctx, job.ID)
			}
			uc.logger.Warn("Remote image fetch failed for job %s, falling back to original: %v", job.ID, err)
			return job.Original, nil
		}
		uc.logger.Info("Fetched remote result image for job %s", job.ID)
		return img, nil
	}

	if uc.settings.AllowFallbackOriginal {
		uc.logger.Warn("No image found in provider response for job %s; using original as fallback", job.ID)
		return job.Original, nil
	}

	return entity.InlineImage{}, errs.ErrNoImageGenerated
}

// cancelled maps a cancelled pipeline to ErrRecordNotFound when the job
// was deleted, and to errCancelled otherwise (shutdown).
func (uc *TransformUseCase) cancelled(ctx context.Context, jobID string) error {
	_, err := uc.jobRepo.Get(context.WithoutCancel(ctx), jobID)
	if errors.Is(err, errs.ErrRecordNotFound) {
		return errs.ErrRecordNotFound
	}

	return errCancelled
}

func (uc *TransformUseCase) progress(jobID string, p int) bool {
	_, err := uc.jobRepo.Update(context.Background(), jobID, func(j *entity.Job) {
		if !j.Status.Terminal() {
			j.SetProgress(p)
		}
	})
	if err != nil {
		if !errors.Is(err, errs.ErrRecordNotFound) {
			uc.logger.Error(err, "TransformUseCase - progress - uc.jobRepo.Update")
		}
		return false
	}

	return true
}

func (uc *TransformUseCase) complete(job *entity.Job, result entity.InlineImage) {
	uc.finish(job, func(j *entity.Job) {
		j.Complete(result, time.Now())
	})
}

func (uc *TransformUseCase) fail(job *entity.Job, reason string) {
	uc.finish(job, func(j *entity.Job) {
		j.Fail(reason, time.Now())
	})
}

// finish applies a terminal transition, then publishes it and arms retention.
// A job removed in the meantime stays removed.
func (uc *TransformUseCase) finish(job *entity.Job, transition func(j *entity.Job)) {
	ctx := context.Background()

	applied := false
	updated, err := uc.jobRepo.Update(ctx, job.ID, func(j *entity.Job) {
		if j.Status.Terminal() {
			return
		}
		transition(j)
		applied = true
	})
	if err != nil {
		if !errors.Is(err, errs.ErrRecordNotFound) {
			uc.logger.Error(err, "TransformUseCase - finish - uc.jobRepo.Update")
		}
		return
	}
	if !applied {
		return
	}

	switch updated.Status {
	case entity.Completed:
		uc.logger.Info("Transformation completed for job %s", updated.ID)
		uc.events.Record(ctx, entity.NewJobEvent(updated, entity.JobCompleted, time.Now()))
	case entity.Failed:
		uc.logger.Warn("Transformation failed for job %s: %s", updated.ID, *updated.Error)
		uc.events.Record(ctx, entity.NewJobEvent(updated, entity.JobFailed, time.Now()))
	}

	uc.retention.Schedule(updated.ID, updated.BlobID)
}

// sleep reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
