package textgen

import "context"

// PromptKind selects the copy the collaborator should produce.
type PromptKind string

const (
	PromptStatusSMS         PromptKind = "STATUS_SMS"
	PromptConfirmationEmail PromptKind = "CONFIRMATION_EMAIL"
	PromptWasteTip          PromptKind = "WASTE_TIP"
	PromptRoutePlan         PromptKind = "ROUTE_PLAN"
)

// Generator produces short contextual copy for an event. Implementations are
// expected to fail or time out unpredictably; callers always keep a static
// fallback per prompt kind and must never let a Generate call block the
// request lifecycle.
type Generator interface {
	Generate(ctx context.Context, kind PromptKind, promptContext map[string]string) (string, error)
}

// Disabled is a Generator that always reports unavailability, forcing callers
// onto their fallback templates. Used when no API key is configured.
type Disabled struct{}

// Generate implements Generator.
func (Disabled) Generate(context.Context, PromptKind, map[string]string) (string, error) {
	return "", ErrUnavailable
}
