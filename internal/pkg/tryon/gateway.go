package tryon

import "context"

// GenerateResult is the provider-agnostic outcome of one generation call.
type GenerateResult struct {
	Success   bool
	OutputURL string
	// Metadata is the raw provider payload, stored opaquely on the job.
	Metadata string
}

// Gateway abstracts the external image-generation provider. Any error,
// non-success response or timeout is treated identically as a terminal
// failure of the job.
type Gateway interface {
	Generate(ctx context.Context, humanImageURL, garmentImageURL string) (*GenerateResult, error)
}
