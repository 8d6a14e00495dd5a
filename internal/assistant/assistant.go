// Package assistant turns free-form text like "spent 12.50 on lunch" into a
// structured transaction draft, using Gemini with a regex fallback for
// responses that are not clean JSON.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDisabled is returned when no generator is configured.
var ErrDisabled = errors.New("assistant is not configured")

// ParsedTransaction is what the assistant extracts from user text. Amount
// stays a string so the regular write-boundary parsing applies to it.
type ParsedTransaction struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// Generator produces a model response for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	gen Generator
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

const promptTemplate = `You are a personal finance assistant. Extract a transaction from the user's message and answer with STRICT JSON only, no prose and no markdown, in the shape {"type":"expense"|"income","amount":"<decimal>","description":"<short label>"}.

Examples:
"spent 12.50 on lunch" -> {"type":"expense","amount":"12.50","description":"Lunch"}
"got my salary, 1800" -> {"type":"income","amount":"1800","description":"Salary"}
"paid 40 for fuel" -> {"type":"expense","amount":"40","description":"Fuel"}
"refund of 25,90 from the store" -> {"type":"income","amount":"25,90","description":"Refund"}
"85 groceries" -> {"type":"expense","amount":"85","description":"Groceries"}

User message: %s`

// Parse asks the model for a structured transaction. A response that is not
// valid JSON falls back to a heuristic extraction rather than failing.
func (s *Service) Parse(ctx context.Context, text string) (ParsedTransaction, error) {
	if s == nil || s.gen == nil {
		return ParsedTransaction{}, ErrDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ParsedTransaction{}, errors.New("empty message")
	}

	raw, err := s.gen.GenerateText(ctx, fmt.Sprintf(promptTemplate, text))
	if err != nil {
		return ParsedTransaction{}, fmt.Errorf("generate: %w", err)
	}

	if parsed, ok := parseStrictJSON(raw); ok {
		return parsed, nil
	}
	return fallbackParse(raw), nil
}

func parseStrictJSON(raw string) (ParsedTransaction, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed ParsedTransaction
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return ParsedTransaction{}, false
	}
	if parsed.Amount == "" {
		return ParsedTransaction{}, false
	}
	if parsed.Type != "income" {
		parsed.Type = "expense"
	}
	if parsed.Description == "" {
		parsed.Description = "Uncategorized"
	}
	return parsed, true
}
