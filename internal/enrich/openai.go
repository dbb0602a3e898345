package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/model"
)

const (
	maxDescriptionRunes = 10000
	maxTitleRunes       = 255
	defaultModel        = "gpt-4o-mini"
)

const systemPrompt = `You are a civic issue processing assistant for PublicVoice, a platform used in Rwanda.

Citizen text may be in Kinyarwanda, in informal or mixed English, or unstructured.
Output ONLY a single valid JSON object (no markdown, no extra text):

1. If the text is in Kinyarwanda, translate it to English.
2. Rewrite the content in clear, formal English suitable for government review.
3. Fill the JSON fields below.

Keys (use "" when not inferable):
- "structured_description": the full formal English description (2-4 sentences).
- "suggested_title": a short title (max 10 words).
- "suggested_category": one of roads, water, security, sanitation, electricity, health, education, other.
- "suggested_institution": one of district, sector, cell, village, mininfra, mineduc, minisante, localGov, other.

If the language is unclear, prefer "other" for category and institution.`

// OpenAIOptions configures the OpenAI-compatible enricher.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string // optional; OpenAI-compatible gateways
	Model   string
	Timeout time.Duration
}

// OpenAI calls a chat completion endpoint.  A single attempt is made per
// report and every failure degrades to "no result".
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewOpenAI builds an OpenAI enricher.
func NewOpenAI(opts OpenAIOptions, log *zap.Logger) *OpenAI {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	m := opts.Model
	if m == "" {
		m = defaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   m,
		timeout: opts.Timeout,
		log:     log,
	}
}

// New returns the OpenAI enricher when a key is configured and Disabled otherwise.
func New(opts OpenAIOptions, log *zap.Logger) Enricher {
	if strings.TrimSpace(opts.APIKey) == "" {
		if log != nil {
			log.Info("report enrichment disabled: OPENAI_API_KEY not set")
		}
		return Disabled{}
	}
	return NewOpenAI(opts, log)
}

type completion struct {
	StructuredDescription string `json:"structured_description"`
	SuggestedTitle        string `json:"suggested_title"`
	SuggestedCategory     string `json:"suggested_category"`
	SuggestedInstitution  string `json:"suggested_institution"`
}

// Enrich implements Enricher.
func (o *OpenAI) Enrich(ctx context.Context, raw string) (Result, bool) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Process this citizen issue text and output only the JSON object.\n\n---\n" + raw + "\n---"},
		},
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			o.log.Warn("enrichment timed out", zap.Duration("timeout", o.timeout))
		} else {
			o.log.Warn("enrichment request failed", zap.Error(err))
		}
		return Result{}, false
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		o.log.Warn("enrichment returned an empty response")
		return Result{}, false
	}

	var c completion
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &c); err != nil {
		o.log.Warn("enrichment returned invalid JSON", zap.Error(err))
		return Result{}, false
	}
	return normalize(c), true
}

// stripFences removes a surrounding markdown code block if present.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}

func normalize(c completion) Result {
	var r Result
	r.StructuredDescription = truncate(strings.TrimSpace(c.StructuredDescription), maxDescriptionRunes)
	r.Title = truncate(strings.TrimSpace(c.SuggestedTitle), maxTitleRunes)
	if v, ok := model.ParseCategory(c.SuggestedCategory); ok {
		r.Category = v
	}
	if v, ok := model.ParseInstitution(c.SuggestedInstitution); ok {
		r.Institution = v
	}
	return r
}

func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
