package assistant

import (
	"context"
	"errors"
	"testing"
)

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func TestParseStrictJSON(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     ParsedTransaction
	}{
		{
			"plain json",
			`{"type":"expense","amount":"12.50","description":"Lunch"}`,
			ParsedTransaction{Type: "expense", Amount: "12.50", Description: "Lunch"},
		},
		{
			"income",
			`{"type":"income","amount":"1800","description":"Salary"}`,
			ParsedTransaction{Type: "income", Amount: "1800", Description: "Salary"},
		},
		{
			"fenced json",
			"```json\n{\"type\":\"expense\",\"amount\":\"40\",\"description\":\"Fuel\"}\n```",
			ParsedTransaction{Type: "expense", Amount: "40", Description: "Fuel"},
		},
		{
			"unknown type becomes expense",
			`{"type":"transfer","amount":"10","description":"X"}`,
			ParsedTransaction{Type: "expense", Amount: "10", Description: "X"},
		},
		{
			"missing description gets default",
			`{"type":"expense","amount":"10","description":""}`,
			ParsedTransaction{Type: "expense", Amount: "10", Description: "Uncategorized"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&fakeGenerator{response: tc.response})
			got, err := svc.Parse(context.Background(), "whatever")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("parsed = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseFallback(t *testing.T) {
	cases := []struct {
		name     string
		response string
		wantType string
		wantAmt  string
		wantDesc string
	}{
		{
			"prose expense",
			"Sure! That looks like 12.50 spent on lunch.",
			"expense", "12.50", "Sure! looks like lunch",
		},
		{
			"prose income",
			"This is income of 1800 salary",
			"income", "1800", "salary",
		},
		{
			"no number",
			"I could not find an amount here",
			"expense", "", "could not find here",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&fakeGenerator{response: tc.response})
			got, err := svc.Parse(context.Background(), "whatever")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Type != tc.wantType {
				t.Fatalf("type = %q, want %q", got.Type, tc.wantType)
			}
			if got.Amount != tc.wantAmt {
				t.Fatalf("amount = %q, want %q", got.Amount, tc.wantAmt)
			}
			if got.Description != tc.wantDesc {
				t.Fatalf("description = %q, want %q", got.Description, tc.wantDesc)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := NewService(nil).Parse(context.Background(), "x"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	svc := NewService(&fakeGenerator{response: "ok"})
	if _, err := svc.Parse(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for empty message")
	}

	boom := errors.New("boom")
	failing := NewService(&fakeGenerator{err: boom})
	if _, err := failing.Parse(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
}

func TestParsePromptContainsMessage(t *testing.T) {
	gen := &fakeGenerator{response: `{"type":"expense","amount":"1","description":"X"}`}
	svc := NewService(gen)

	if _, err := svc.Parse(context.Background(), "spent 9 on coffee"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !contains(gen.prompt, "spent 9 on coffee") {
		t.Fatalf("prompt must embed the user message, got %q", gen.prompt)
	}
	if !contains(gen.prompt, "STRICT JSON") {
		t.Fatalf("prompt must demand strict JSON, got %q", gen.prompt)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
