package dto

import "github.com/andreyxaxa/Photo-Transformer/internal/entity"

// Shape names the request convention that produced a provider response.
type Shape string

const (
	ShapeResponses Shape = "responses"
	ShapeChat      Shape = "chat"
)

type GenerationRequest struct {
	Image  entity.InlineImage
	Prompt string
}

// Generation is a successful provider response body plus where it came from.
type Generation struct {
	Payload []byte
	Model   string
	Shape   Shape
}
