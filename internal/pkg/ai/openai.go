package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/model"
)

var ErrEmptyCompletion = errors.New("ai provider returned no content")

// OpenAIGenerator produces content through the OpenAI chat completion API.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIGenerator(cfg config.AIConfig) *OpenAIGenerator {
	return newOpenAIGenerator(openai.NewClient(cfg.OpenAIAPIKey), cfg)
}

func newOpenAIGenerator(client *openai.Client, cfg config.AIConfig) *OpenAIGenerator {
	m := cfg.Model
	if m == "" {
		m = openai.GPT3Dot5Turbo
	}
	return &OpenAIGenerator{client: client, model: m, maxTokens: cfg.MaxTokens}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, kind model.RequestKind, p Payload) (*Result, error) {
	prompt, err := buildPrompt(kind, p)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a study assistant for secondary and university students."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, ErrEmptyCompletion
	}

	switch kind {
	case model.RequestQuestionGeneration:
		return &Result{Questions: splitQuestions(content)}, nil
	case model.RequestSummarization:
		return &Result{Summary: content}, nil
	case model.RequestQuestionAnswering:
		return &Result{Answer: content}, nil
	default:
		return &Result{StudyPlan: content}, nil
	}
}

func buildPrompt(kind model.RequestKind, p Payload) (string, error) {
	switch kind {
	case model.RequestQuestionGeneration:
		return "Write five study questions about the following paragraph, one per line:\n\n" + p.Paragraph, nil
	case model.RequestSummarization:
		return "Summarize the following text for revision:\n\n" + p.Text, nil
	case model.RequestQuestionAnswering:
		return fmt.Sprintf("Answer the question using only the context.\n\nContext:\n%s\n\nQuestion: %s", p.Context, p.Question), nil
	case model.RequestStudyPlanGeneration:
		return fmt.Sprintf("Create a week-by-week study plan.\nSyllabus: %s\nTopics: %s\nStart: %s\nDeadline: %s",
			p.Syllabus, p.Topics, p.StartDate, p.Deadline), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// splitQuestions turns a numbered or bulleted list into plain questions.
func splitQuestions(content string) []string {
	var questions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.)-* ")
		if line != "" {
			questions = append(questions, line)
		}
	}
	return questions
}
