package request

// Transform carries transformationType and amount as whatever JSON the
// caller sent; they are not validated.
type Transform struct {
	ImageID            string `json:"imageId"`
	TransformationType any    `json:"transformationType,omitempty" swaggertype:"string"`
	Amount             any    `json:"amount,omitempty" swaggertype:"number"`
}
