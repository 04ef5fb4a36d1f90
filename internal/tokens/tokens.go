// Package tokens provides token usage estimates for stored interactions.
// Counts are informational: they feed the prompt_tokens/response_tokens
// columns of the interaction record, not any billing or limiting logic.
package tokens

import (
	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens in a piece of plain text.
type Counter interface {
	Count(text string) int
}

// Estimator approximates token counts from character length. It is the
// fallback when no real tokenizer encoding is available for a model.
type Estimator struct {
	// CharsPerToken is the average characters per token (default 4).
	CharsPerToken float64
}

// NewEstimator creates a character-based estimator.
func NewEstimator() *Estimator {
	return &Estimator{CharsPerToken: 4.0}
}

// Count estimates the token count of text.
func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	per := e.CharsPerToken
	if per <= 0 {
		per = 4.0
	}
	return int(float64(len(text)) / per)
}

// tiktokenCounter counts with a real BPE codec, falling back to the
// estimator when encoding fails.
type tiktokenCounter struct {
	codec    tokenizer.Codec
	fallback *Estimator
}

// NewCounter returns the best available counter: a cl100k_base tiktoken
// codec when it can be constructed, the character estimator otherwise.
func NewCounter() Counter {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return NewEstimator()
	}
	return &tiktokenCounter{codec: codec, fallback: NewEstimator()}
}

func (c *tiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return c.fallback.Count(text)
	}
	return len(ids)
}
