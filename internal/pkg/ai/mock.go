package ai

import (
	"context"
	"fmt"

	"github.com/qs3c/zubari_server/internal/model"
)

const summaryPreviewLen = 200

var mockQuestions = []string{
	"What is the main topic discussed in this paragraph?",
	"Can you explain the key concepts mentioned?",
	"What are the implications of the information provided?",
	"How does this relate to broader themes in the subject?",
	"What questions might arise from this content?",
}

const mockStudyPlan = `
STUDY PLAN FOR: %s

Topics to Cover: %s
Duration: %s to %s

Week 1: Introduction and Foundation
- Day 1-2: Overview of key concepts
- Day 3-4: Deep dive into fundamentals
- Day 5-7: Practice exercises and review

Week 2: Advanced Topics
- Day 1-3: Complex concepts and applications
- Day 4-5: Case studies and examples
- Day 6-7: Assessment and feedback

[This is a mock study plan. Connect an AI provider for personalized plans.]
`

// MockGenerator returns deterministic canned content. It is used when no AI
// provider is configured.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (g *MockGenerator) Generate(ctx context.Context, kind model.RequestKind, p Payload) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch kind {
	case model.RequestQuestionGeneration:
		questions := make([]string, len(mockQuestions))
		copy(questions, mockQuestions)
		return &Result{Questions: questions}, nil
	case model.RequestSummarization:
		return &Result{Summary: mockSummary(p.Text)}, nil
	case model.RequestQuestionAnswering:
		return &Result{Answer: "This is a mock answer based on the provided context. Connect an AI provider for real question answering."}, nil
	case model.RequestStudyPlanGeneration:
		return &Result{StudyPlan: fmt.Sprintf(mockStudyPlan, p.Syllabus, p.Topics, p.StartDate, p.Deadline)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

func mockSummary(text string) string {
	runes := []rune(text)
	summary := text
	if len(runes) > summaryPreviewLen {
		summary = string(runes[:summaryPreviewLen]) + "..."
	}
	return summary + " [This is a mock summary. Connect an AI provider for real summarization.]"
}
