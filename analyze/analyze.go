// Package analyze wraps the LLM collaborators: monthly report prose and
// keyword extraction over the memo corpus. The store and query layers never
// call these directly; failures here surface as user-visible messages and
// never touch persisted records.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Analysis statuses recorded in the archive.
const (
	StatusOK      = "LLM_OK"
	StatusFailed  = "LLM_FAILED"
	StatusSkipped = "LLM_SKIPPED"
)

const (
	DefaultModel   = "llama-3.1-8b-instant"
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// MaxCorpusChars caps the joined memo corpus accepted by Summarize.
	// The cap belongs to this collaborator; callers can pre-check with
	// CorpusSize.
	MaxCorpusChars = 6000
)

var (
	ErrNoAPIKey       = errors.New("analyze: api key not configured")
	ErrCorpusTooLarge = fmt.Errorf("analyze: corpus exceeds %d characters", MaxCorpusChars)
	ErrEmptyResponse  = errors.New("analyze: empty model response")
)

// Keyword is one extracted keyword with its occurrence count.
type Keyword struct {
	Word  string
	Count int
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	api   openai.Client
	model string
}

func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	api := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &Client{api: api, model: model}, nil
}

// JoinCorpus joins memos the way both collaborators consume them.
func JoinCorpus(memos []string) string {
	return strings.Join(memos, "\n")
}

// CorpusSize returns the character count Summarize will be checked against.
func CorpusSize(memos []string) int {
	return len([]rune(JoinCorpus(memos)))
}

// Summarize produces the monthly analysis prose for the given period.
// Returns ErrCorpusTooLarge without calling the model when the corpus
// exceeds MaxCorpusChars.
func (c *Client) Summarize(ctx context.Context, year, month int, memos []string) (string, error) {
	if CorpusSize(memos) > MaxCorpusChars {
		return "", ErrCorpusTooLarge
	}
	prompt := summaryPrompt(year, month, JoinCorpus(memos))
	content, err := c.complete(ctx, prompt, 0.5, 1000)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// ExtractKeywords asks the model for a top-10 keyword count table and
// parses its CSV-ish reply. A reply with no parseable rows yields a nil
// table without an error.
func (c *Client) ExtractKeywords(ctx context.Context, memos []string) ([]Keyword, error) {
	prompt := keywordPrompt(JoinCorpus(memos))
	content, err := c.complete(ctx, prompt, 0.0, 200)
	if err != nil {
		return nil, err
	}
	return ParseKeywordTable(content), nil
}

func (c *Client) complete(ctx context.Context, prompt string, temperature float64, maxTokens int64) (string, error) {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("analyze: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return completion.Choices[0].Message.Content, nil
}

func summaryPrompt(year, month int, corpus string) string {
	return strings.TrimSpace(fmt.Sprintf(`あなたはデータアナリストです。%d年%d月の電話メモを分析し、日本語でレポートを作成してください。

【指示】
- 「明日」「今日」「電話」「お願いします」などの一般的な単語は分析対象から外してください。
- 業務上の具体的な課題や、頻出する固有名詞に着目してください。

【フォーマット】
1. 頻出トピック (3つ)
2. 傾向の要約 (200文字以内)
3. 業務改善アドバイス

[データ]
%s`, year, month, corpus))
}

func keywordPrompt(corpus string) string {
	return strings.TrimSpace(fmt.Sprintf(`以下の電話メモから、業務上重要な「キーワード」をトップ10抽出し、その出現回数をカウントしてください。

【重要：除外ルール】
- 日時（明日、今日、来週など）は除外。
- 一般的な動詞（電話、連絡、折り返し、お願いします、対応）は除外。
- 会社名、製品名、トラブル内容などの「名詞」を優先。

【出力形式】
CSV形式（ヘッダー：キーワード,回数）のみ出力。
装飾（`+"```"+`csv など）や挨拶は一切不要。

[データ]
%s`, corpus))
}
