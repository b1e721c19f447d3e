package paper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/covergen/covergen-api/internal/pkg/arxiv"
)

// maxContextChars truncates the extracted text before prompting; enough for
// the model to see the introduction and conclusions of most papers.
const maxContextChars = 12000

// Summarizer produces a reader-facing summary of a parsed paper.
type Summarizer interface {
	Summarize(ctx context.Context, p *arxiv.Paper) (string, error)
}

// OpenAISummarizer talks to any OpenAI-compatible chat completion endpoint.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

func NewOpenAISummarizer(apiKey, baseURL, model string) *OpenAISummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAISummarizer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

const summarySystemPrompt = `You are an academic writing assistant. Summarize research papers for a general technical audience. Structure the summary as: the problem the paper addresses, the proposed approach, the key results, and why they matter. Keep it under 400 words and do not invent details that are not in the provided text.`

func (s *OpenAISummarizer) Summarize(ctx context.Context, p *arxiv.Paper) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", p.Title)
	if len(p.Authors) > 0 {
		fmt.Fprintf(&sb, "Authors: %s\n", strings.Join(p.Authors, ", "))
	}
	fmt.Fprintf(&sb, "Abstract: %s\n", p.Abstract)
	if p.TextContent != "" {
		text := p.TextContent
		if len(text) > maxContextChars {
			text = text[:maxContextChars]
		}
		fmt.Fprintf(&sb, "\nExtracted text:\n%s\n", text)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		Temperature: 0.3,
		MaxTokens:   800,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if len(summary) < 50 {
		return "", fmt.Errorf("summary too short (%d chars)", len(summary))
	}
	return summary, nil
}
