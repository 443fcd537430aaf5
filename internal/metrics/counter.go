// Package metrics counts bytes, tokens, and lines of generated digest text.
package metrics

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Stats holds the size measurements for a chunk of text.
type Stats struct {
	Bytes  int
	Tokens int
	Lines  int
}

// Add accumulates another measurement into s.
func (s *Stats) Add(o Stats) {
	s.Bytes += o.Bytes
	s.Tokens += o.Tokens
	s.Lines += o.Lines
}

// Counter measures a chunk of text.
type Counter interface {
	Count(text string) Stats
}

// SimpleCounter estimates tokens as bytes/4, the usual rough heuristic for
// English text. It needs no model data and never fails.
type SimpleCounter struct{}

func (SimpleCounter) Count(text string) Stats {
	return Stats{
		Bytes:  len(text),
		Tokens: len(text) / 4,
		Lines:  strings.Count(text, "\n") + 1,
	}
}

// TiktokenCounter counts tokens with a real tokenizer. The encoding is
// resolved once at construction.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter creates a counter for the given model name.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("unsupported model for tiktoken: %s", model)
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

func (c *TiktokenCounter) Count(text string) Stats {
	return Stats{
		Bytes:  len(text),
		Tokens: len(c.encoding.Encode(text, nil, nil)),
		Lines:  strings.Count(text, "\n") + 1,
	}
}

// NewCounter returns the counter selected by name, falling back to the
// simple estimator when the tokenizer data is unavailable (tiktoken fetches
// its vocabulary on first use).
func NewCounter(name string) Counter {
	if name == "tiktoken" {
		if c, err := NewTiktokenCounter("gpt-3.5-turbo"); err == nil {
			return c
		}
	}
	return SimpleCounter{}
}
