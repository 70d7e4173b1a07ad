package response

type UploadPhoto struct {
	Success bool   `json:"success" example:"true"`
	ImageID string `json:"imageId" example:"6f1c2d0e-4b5a-4f7e-9a61-2d3c4b5a6f70"`
	Message string `json:"message" example:"Photo uploaded successfully"`
}

type Transform struct {
	Success bool   `json:"success" example:"true"`
	JobID   string `json:"jobId" example:"0b7e8d6c-1a2b-4c3d-8e9f-a0b1c2d3e4f5"`
	Message string `json:"message" example:"Transformation started"`
}

// JobStatus carries images as data URIs. ResultURL and Error are null
// until the job ends.
type JobStatus struct {
	JobID       string  `json:"jobId"`
	Status      string  `json:"status" example:"processing"`
	OriginalURL string  `json:"originalUrl"`
	ResultURL   *string `json:"resultUrl"`
	Error       *string `json:"error"`
	Progress    int     `json:"progress" example:"30"`
	Model       string  `json:"model,omitempty"`
	Shape       string  `json:"shape,omitempty"`
}
