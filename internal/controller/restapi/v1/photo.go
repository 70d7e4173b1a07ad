package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/andreyxaxa/Photo-Transformer/internal/controller/restapi/v1/request"
	"github.com/andreyxaxa/Photo-Transformer/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Photo-Transformer/internal/dto"
	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/image"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

// @Summary  	Upload photo
// @Description Keeps the photo in memory and returns its id
// @Tags 		photos
// @Accept 		mpfd
// @Produce 	json
// @Param 		photo formData file true "Image file, up to 10MB"
// @Success 	200 {object} response.UploadPhoto
// @Failure 	400 {object} response.Error "Missing, non-image or oversized file"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/upload-photo [post]
func (r *V1) uploadPhoto(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("photo")
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "No photo uploaded")
	}

	contentType := file.Header.Get(fiber.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return errorResponse(ctx, http.StatusBadRequest, "Only images are allowed")
	}

	if file.Size > image.MaxUploadBytes {
		return errorResponse(ctx, http.StatusBadRequest, "File too large (max 10MB)")
	}

	fileReader, err := file.Open()
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadPhoto")

		return errorResponse(ctx, http.StatusInternalServerError, "Upload failed")
	}
	defer fileReader.Close()

	data, err := io.ReadAll(io.LimitReader(fileReader, image.MaxUploadBytes+1))
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadPhoto")

		return errorResponse(ctx, http.StatusInternalServerError, "Upload failed")
	}

	blob, err := r.img.UploadImage(ctx.UserContext(), data, file.Filename, contentType)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidUpload) {
			return errorResponse(ctx, http.StatusBadRequest, "Invalid photo")
		}
		r.logger.Error(err, "restapi - v1 - uploadPhoto")

		return errorResponse(ctx, http.StatusInternalServerError, "Upload failed")
	}

	return ctx.JSON(response.UploadPhoto{
		Success: true,
		ImageID: blob.ID,
		Message: "Photo uploaded successfully",
	})
}

// @Summary  	Start transformation
// @Description Creates a job for an uploaded photo and processes it in the background
// @Tags 		transformations
// @Accept 		json
// @Produce 	json
// @Param 		request body request.Transform true "Image id and optional parameters"
// @Success 	200 {object} response.Transform
// @Failure 	400 {object} response.Error "Invalid image ID"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/transform [post]
func (r *V1) transform(ctx *fiber.Ctx) error {
	var body request.Transform

	if len(ctx.Body()) > 0 {
		if err := json.Unmarshal(ctx.Body(), &body); err != nil {
			return errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		}
	}

	job, err := r.tr.Submit(ctx.UserContext(), body.ImageID, dto.TransformParams{
		TransformationType: body.TransformationType,
		Amount:             body.Amount,
	})
	if err != nil {
		if errors.Is(err, errs.ErrInvalidImageID) {
			return errorResponse(ctx, http.StatusBadRequest, "Invalid image ID")
		}
		r.logger.Error(err, "restapi - v1 - transform")

		return errorResponse(ctx, http.StatusInternalServerError, "Failed to start transformation")
	}

	return ctx.JSON(response.Transform{
		Success: true,
		JobID:   job.ID,
		Message: "Transformation started",
	})
}

// @Summary  	Job status
// @Description Returns the job state with original and result images as data URIs
// @Tags 		transformations
// @Produce 	json
// @Param 		jobId path string true "Job ID"
// @Success 	200 {object} response.JobStatus
// @Failure 	404 {object} response.Error "Job not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/job-status/{jobId} [get]
func (r *V1) jobStatus(ctx *fiber.Ctx) error {
	job, err := r.tr.Status(ctx.UserContext(), ctx.Params("jobId"))
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "Job not found")
		}
		r.logger.Error(err, "restapi - v1 - jobStatus")

		return errorResponse(ctx, http.StatusInternalServerError, "Failed to get status")
	}

	return ctx.JSON(jobStatusResponse(job))
}

// @Summary  	Delete job
// @Description Removes the job, its photo and its retention timer. Unknown ids are accepted
// @Tags 		transformations
// @Param 		jobId path string true "Job ID"
// @Success 	204 "Deleted"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/job/{jobId} [delete]
func (r *V1) deleteJob(ctx *fiber.Ctx) error {
	err := r.tr.Delete(ctx.UserContext(), ctx.Params("jobId"))
	if err != nil {
		r.logger.Error(err, "restapi - v1 - deleteJob")

		return errorResponse(ctx, http.StatusInternalServerError, "Failed to delete job")
	}

	return ctx.SendStatus(http.StatusNoContent)
}

func jobStatusResponse(job *entity.Job) response.JobStatus {
	resp := response.JobStatus{
		JobID:       job.ID,
		Status:      string(job.Status),
		OriginalURL: job.Original.DataURI(),
		Error:       job.Error,
		Progress:    job.Progress,
		Model:       job.Model,
		Shape:       job.Shape,
	}

	if job.Result != nil {
		uri := job.Result.DataURI()
		resp.ResultURL = &uri
	}

	return resp
}
