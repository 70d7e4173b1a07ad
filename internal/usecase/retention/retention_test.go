package retention

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/internal/repo/inmemory"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/events"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	jobs   *inmemory.JobRepo
	blobs  *inmemory.BlobRepo
	outbox *inmemory.OutboxRepo
	logs   *observer.ObservedLogs
	s      *Scheduler
}

func newFixture(t *testing.T, ttl time.Duration) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.NewWithCore(core)

	f := &fixture{
		jobs:   inmemory.NewJobRepo(),
		blobs:  inmemory.NewBlobRepo(),
		outbox: inmemory.NewOutboxRepo(),
		logs:   logs,
	}
	f.s = New(f.jobs, f.blobs, events.New(f.outbox, true, l), l, ttl)
	t.Cleanup(f.s.Shutdown)

	return f
}

func (f *fixture) seed(t *testing.T, jobID, blobID string) {
	t.Helper()

	ctx := context.Background()
	if err := f.blobs.Put(ctx, &entity.Blob{ID: blobID, Data: []byte("x"), MIMEType: "image/png"}); err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	if err := f.jobs.Create(ctx, &entity.Job{ID: jobID, BlobID: blobID, Status: entity.Completed}); err != nil {
		t.Fatalf("seed job: %v", err)
	}
}

func (f *fixture) cleanupLines(jobID string) int {
	n := 0
	for _, e := range f.logs.All() {
		if strings.HasPrefix(e.Message, "Cleaned up job "+jobID+" ") {
			n++
		}
	}

	return n
}

func (f *fixture) jobExists(jobID string) bool {
	_, err := f.jobs.Get(context.Background(), jobID)

	return !errors.Is(err, errs.ErrRecordNotFound)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTimerEvictsJobAndBlob(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.seed(t, "job-1", "blob-1")

	f.s.Schedule("job-1", "blob-1")

	waitFor(t, func() bool { return !f.jobExists("job-1") })

	if _, err := f.blobs.Get(context.Background(), "blob-1"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected blob to be evicted, got %v", err)
	}
	if f.s.Scheduled("job-1") {
		t.Fatal("timer entry must be gone after firing")
	}

	waitFor(t, func() bool { return f.cleanupLines("job-1") == 1 })

	pending, _ := f.outbox.GetPendingEvents(context.Background(), 1, 10)
	if len(pending) != 1 || pending[0].Type != entity.JobEvicted {
		t.Fatalf("expected one evicted event, got %+v", pending)
	}
}

func TestScheduleIsIdempotent(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	f.seed(t, "job-1", "blob-1")

	f.s.Schedule("job-1", "blob-1")
	f.s.Schedule("job-1", "blob-1")

	waitFor(t, func() bool { return !f.jobExists("job-1") })
	time.Sleep(60 * time.Millisecond)

	if n := f.cleanupLines("job-1"); n != 1 {
		t.Fatalf("expected exactly one cleanup line, got %d", n)
	}
}

func TestCancelPreventsEviction(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.seed(t, "job-1", "blob-1")

	f.s.Schedule("job-1", "blob-1")
	if !f.s.Cancel("job-1") {
		t.Fatal("expected a pending timer")
	}
	if f.s.Cancel("job-1") {
		t.Fatal("second cancel must report nothing pending")
	}

	time.Sleep(60 * time.Millisecond)

	if !f.jobExists("job-1") {
		t.Fatal("cancelled job must not be evicted")
	}
}

func TestEvictIsImmediateAndSilencesTimer(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	f.seed(t, "job-1", "blob-1")
	f.s.Schedule("job-1", "blob-1")

	if err := f.s.Evict(context.Background(), "job-1", "blob-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.jobExists("job-1") {
		t.Fatal("expected job to be removed synchronously")
	}
	if f.s.Scheduled("job-1") {
		t.Fatal("expected timer to be cancelled")
	}

	time.Sleep(80 * time.Millisecond)

	if n := f.cleanupLines("job-1"); n != 1 {
		t.Fatalf("expected exactly one cleanup line, got %d", n)
	}

	// idempotent
	if err := f.s.Evict(context.Background(), "job-1", "blob-1"); err != nil {
		t.Fatalf("second evict: %v", err)
	}
	if n := f.cleanupLines("job-1"); n != 1 {
		t.Fatalf("expected no further cleanup lines, got %d", n)
	}
}

func TestJobsAreIndependent(t *testing.T) {
	f := newFixture(t, 40*time.Millisecond)
	f.seed(t, "job-1", "blob-1")
	f.seed(t, "job-2", "blob-2")
	f.s.Schedule("job-1", "blob-1")
	f.s.Schedule("job-2", "blob-2")

	if err := f.s.Evict(context.Background(), "job-1", "blob-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !f.jobExists("job-2") || !f.s.Scheduled("job-2") {
		t.Fatal("job-2 must keep its record and timer")
	}

	waitFor(t, func() bool { return !f.jobExists("job-2") })
}

func TestShutdownStopsTimers(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.seed(t, "job-1", "blob-1")
	f.s.Schedule("job-1", "blob-1")

	f.s.Shutdown()
	f.s.Schedule("job-1", "blob-1")

	time.Sleep(60 * time.Millisecond)

	if !f.jobExists("job-1") {
		t.Fatal("no eviction expected after shutdown")
	}
}

func TestScheduleSkipsRemovedJob(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.seed(t, "job-1", "blob-1")

	if err := f.s.Evict(context.Background(), "job-1", "blob-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a pipeline finishing after the delete still asks for retention
	f.s.Schedule("job-1", "blob-1")

	if f.s.Scheduled("job-1") {
		t.Fatal("no timer expected for a removed job")
	}
	f.s.Schedule("never-created", "")
	if f.s.Scheduled("never-created") {
		t.Fatal("no timer expected for an unknown job")
	}
}
