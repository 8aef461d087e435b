package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"seongsu-popup-collector/internal/models"
)

// EventAnalysis is the structured answer the model returns for a single
// event. Empty string fields mean the model did not supply a value; a nil
// Confidence means none was given.
type EventAnalysis struct {
	Title      string
	Brand      string
	StartDate  string // "YYYY-MM-DD"
	EndDate    string // "YYYY-MM-DD"
	Place      string
	Address    string
	Confidence *float64
	Reasoning  string
}

// EventAnalyzer is the enrichment capability consumed by the processor.
// Implementations must treat every failure as an absent result; enrichment
// is advisory and must never abort the pipeline.
type EventAnalyzer interface {
	AnalyzeEvent(ctx context.Context, title, description string, current *models.EventRecord) *EventAnalysis
}

// OpenAIClient asks a chat model to correct and complete extracted event
// fields. It implements EventAnalyzer.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewOpenAIClient creates an enrichment client with default settings
func NewOpenAIClient(apiKey string, logger zerolog.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       "gpt-4o-mini",
		temperature: 0.1,
		maxTokens:   1000,
		timeout:     30 * time.Second,
		logger:      logger,
	}
}

// NewOpenAIClientWithConfig creates an enrichment client with a custom model
func NewOpenAIClientWithConfig(apiKey, model string, temperature float32, maxTokens int, logger zerolog.Logger) *OpenAIClient {
	client := NewOpenAIClient(apiKey, logger)
	client.model = model
	client.temperature = temperature
	client.maxTokens = maxTokens
	return client
}

// AnalyzeEvent sends the event text to the model and parses its structured
// answer. Any network or parse failure returns nil.
func (c *OpenAIClient) AnalyzeEvent(ctx context.Context, title, description string, current *models.EventRecord) *EventAnalysis {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := c.buildPrompt(title, description, current)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("title", title).Msg("enrichment request failed")
		return nil
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn().Str("title", title).Msg("enrichment returned no choices")
		return nil
	}

	analysis := parseAnalysisResponse(resp.Choices[0].Message.Content)
	if analysis == nil {
		c.logger.Warn().Str("title", title).Msg("failed to parse enrichment response")
		return nil
	}

	c.logger.Info().Str("title", title).Msg("event enriched")
	return analysis
}

// buildPrompt creates the Korean instruction asking the model for a JSON
// answer in the expected shape.
func (c *OpenAIClient) buildPrompt(title, description string, current *models.EventRecord) string {
	currentJSON := "{}"
	if current != nil {
		if data, err := json.Marshal(current); err == nil {
			currentJSON = string(data)
		}
	}

	return fmt.Sprintf(`다음 팝업스토어 정보를 분석하고 필요한 정보를 추출해주세요:

제목: %s

설명: %s

현재 추출된 정보: %s

제목, 브랜드명, 시작일/종료일, 위치, 신뢰도를 다음과 같은 형식의 JSON으로 응답해주세요:

{
    "title": "정확한 행사명",
    "brand": "브랜드명",
    "start_date": "YYYY-MM-DD",
    "end_date": "YYYY-MM-DD",
    "location": {
        "place": "장소명 (예: 성수동 위즈엘)",
        "address": "정확한 주소"
    },
    "confidence": 0.8,
    "reasoning": "판단 근거"
}

날짜 정보가 명확하지 않으면 최대한 텍스트 내용을 기반으로 추정해주세요.
위치 정보가 명확하지 않으면 '미정'으로 표시하고 confidence를 낮게 설정해주세요.
confidence는 0.0부터 1.0 사이의 값으로, 정보의 확실성을 나타냅니다.`, title, description, currentJSON)
}

// parseAnalysisResponse extracts the JSON object embedded in the model's
// reply. Models wrap the object in prose or code fences, so everything
// outside the first '{' and the last '}' is discarded. The answer is only
// trusted when title, start_date, and location are all present.
func parseAnalysisResponse(text string) *EventAnalysis {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil {
		return nil
	}

	for _, required := range []string{"title", "start_date", "location"} {
		if _, ok := fields[required]; !ok {
			return nil
		}
	}

	analysis := &EventAnalysis{
		Title:     decodeString(fields["title"]),
		Brand:     decodeString(fields["brand"]),
		StartDate: decodeString(fields["start_date"]),
		EndDate:   decodeString(fields["end_date"]),
		Reasoning: decodeString(fields["reasoning"]),
	}

	var location struct {
		Place   string `json:"place"`
		Address string `json:"address"`
	}
	if err := json.Unmarshal(fields["location"], &location); err == nil {
		analysis.Place = location.Place
		analysis.Address = location.Address
	}

	if raw, ok := fields["confidence"]; ok {
		confidence := coerceConfidence(raw)
		analysis.Confidence = &confidence
	}

	return analysis
}

func decodeString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// coerceConfidence accepts a number or a numeric string and falls back to
// 0.5 when neither parses.
func coerceConfidence(raw json.RawMessage) float64 {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return parsed
		}
	}
	return 0.5
}
