package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/jobdigest/internal/cache"
	"github.com/hyperifyio/jobdigest/internal/posting"
)

// ErrEmptyCompletion indicates the model returned no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

const defaultSystemPrompt = "あなたは求人票を求職者向けに紹介する編集者です。与えられた要点だけを根拠に、丁寧な日本語で2〜3文の紹介文を書いてください。要点にない条件や数値を付け加えないでください。箇条書きや見出しは使わず、本文だけを出力してください。"

// Polisher rewrites the heuristic summary of a posting as short Japanese
// prose using a chat model.
type Polisher struct {
	Client Client
	Model  string
	Cache  *cache.LLMCache
	// SystemPrompt, when non-empty, replaces the default instructions.
	SystemPrompt string
	// Timeout bounds a single model call. Zero means 60 seconds.
	Timeout time.Duration
}

// Polish returns the rewritten summary. Callers keep p.Summary on error.
func (pl *Polisher) Polish(ctx context.Context, p posting.JobPosting) (string, error) {
	if pl == nil || pl.Client == nil || strings.TrimSpace(pl.Model) == "" {
		return "", errors.New("polisher not configured")
	}
	system := defaultSystemPrompt
	if strings.TrimSpace(pl.SystemPrompt) != "" {
		system = pl.SystemPrompt
	}
	user := buildUserMessage(p)
	key := cache.KeyFrom(pl.Model, system+"\n\n"+user)

	if pl.Cache != nil {
		if raw, ok, _ := pl.Cache.Get(ctx, key); ok {
			var out struct {
				Summary string `json:"summary"`
			}
			if err := json.Unmarshal(raw, &out); err == nil && strings.TrimSpace(out.Summary) != "" {
				return out.Summary, nil
			}
		}
	}

	timeout := pl.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := pl.Client.CreateChatCompletion(cctx, openai.ChatCompletionRequest{
		Model: pl.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("polish call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	if pl.Cache != nil {
		payload, _ := json.Marshal(map[string]string{"summary": out})
		_ = pl.Cache.Save(ctx, key, payload)
	}
	return out, nil
}

func buildUserMessage(p posting.JobPosting) string {
	var sb strings.Builder
	sb.WriteString("求人の要点:\n")
	sb.WriteString(p.Summary)
	if len(p.Highlights) > 0 {
		sb.WriteString("\n\nおすすめポイント: ")
		sb.WriteString(strings.Join(p.Highlights, "、"))
	}
	if p.EmploymentType != "" {
		sb.WriteString("\n雇用形態: ")
		sb.WriteString(p.EmploymentType)
	}
	if p.Location != "" {
		sb.WriteString("\n就業場所: ")
		sb.WriteString(p.Location)
	}
	return sb.String()
}
