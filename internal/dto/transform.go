package dto

import (
	"math"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
)

// TransformParams are passed through as decoded from the request.
type TransformParams struct {
	TransformationType any
	Amount             any
}

// WithDefaults replaces absent or falsy parameters with the defaults.
func (p TransformParams) WithDefaults() TransformParams {
	if falsy(p.TransformationType) {
		p.TransformationType = entity.DefaultTransformationType
	}
	if falsy(p.Amount) {
		p.Amount = entity.DefaultAmount
	}

	return p
}

func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case float64:
		return x == 0 || math.IsNaN(x)
	case int:
		return x == 0
	default:
		return false
	}
}
