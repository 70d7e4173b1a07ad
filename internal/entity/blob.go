package entity

import "time"

// Blob is an uploaded source image held in memory.
type Blob struct {
	ID           string
	Data         []byte
	MIMEType     string
	OriginalName string
	Size         int64
	UploadedAt   time.Time

	// ClaimedAt is set once a transformation references the blob.
	ClaimedAt *time.Time
}

func (b *Blob) Inline() InlineImage {
	return NewInlineImage(b.Data, b.MIMEType)
}
