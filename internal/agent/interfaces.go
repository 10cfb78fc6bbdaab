package agent

import "context"

type AIClient interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSONWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ImageClient produces raw image bytes from a text prompt.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}
