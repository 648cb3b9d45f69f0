package gemini

import "errors"

var (
	ErrMissingAPIKey  = errors.New("gemini: api key is required")
	ErrNoMessages     = errors.New("gemini: at least one message is required")
	ErrEmptyResponse  = errors.New("gemini: empty response")
	ErrCompletionFail = errors.New("gemini: completion failed")
)
