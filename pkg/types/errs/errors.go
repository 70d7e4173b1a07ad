package errs

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrInvalidImageID    = errors.New("invalid image id")
	ErrInvalidUpload     = errors.New("invalid upload")
	ErrMissingCredential = errors.New("OPENROUTER_API_KEY is not set. Set it in .env or use MOCK_AI=true for local testing")
	ErrProviderExhausted = errors.New("provider exhausted")
	ErrNoImageGenerated  = errors.New("no image generated by provider")
	ErrRemoteFetch       = errors.New("remote image fetch failed")
	ErrAlreadyStarted    = errors.New("already started")
)
