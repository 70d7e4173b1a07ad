package entity

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const _defaultImageMIME = "image/png"

// InlineImage is a self-contained image: base64 payload plus its declared MIME type.
type InlineImage struct {
	MIMEType string
	Base64   string
}

func NewInlineImage(data []byte, mimeType string) InlineImage {
	return InlineImage{
		MIMEType: mimeType,
		Base64:   base64.StdEncoding.EncodeToString(data),
	}
}

// ParseDataURI accepts "data:<mime>;base64,<payload>".
func ParseDataURI(uri string) (InlineImage, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return InlineImage{}, fmt.Errorf("ParseDataURI: missing data: scheme")
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return InlineImage{}, fmt.Errorf("ParseDataURI: missing payload separator")
	}

	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return InlineImage{}, fmt.Errorf("ParseDataURI: only base64 data URIs are supported")
	}
	if mimeType == "" {
		mimeType = _defaultImageMIME
	}

	return InlineImage{MIMEType: mimeType, Base64: payload}, nil
}

func (i InlineImage) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64
}

func (i InlineImage) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(i.Base64)
	if err != nil {
		return nil, fmt.Errorf("InlineImage - Bytes - base64.DecodeString: %w", err)
	}

	return b, nil
}

func (i InlineImage) IsZero() bool {
	return i.Base64 == ""
}
