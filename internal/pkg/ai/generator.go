package ai

import (
	"context"
	"errors"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/model"
)

var ErrUnknownKind = errors.New("unknown request kind")

// Payload carries the user input for one AI operation. Only the fields the
// kind uses are read.
type Payload struct {
	Paragraph string
	Text      string
	Context   string
	Question  string
	Syllabus  string
	Topics    string
	StartDate string
	Deadline  string
}

// Result holds the generated content; only the field matching the kind is set.
type Result struct {
	Questions []string
	Summary   string
	Answer    string
	StudyPlan string
}

// Generator produces AI content for a request kind.
type Generator interface {
	Generate(ctx context.Context, kind model.RequestKind, payload Payload) (*Result, error)
}

// New returns an OpenAI-backed generator when an API key is configured and
// the canned MockGenerator otherwise.
func New(cfg config.AIConfig) Generator {
	if cfg.OpenAIAPIKey == "" {
		return NewMockGenerator()
	}
	return NewOpenAIGenerator(cfg)
}
