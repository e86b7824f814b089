package utils

import (
	"errors"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "object in prose",
			input: `Here is the result: {"a":1} hope it helps`,
			want:  `{"a":1}`,
		},
		{
			name:  "json code fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "plain code fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "nested objects",
			input: `{"a":{"b":2},"c":3} trailing`,
			want:  `{"a":{"b":2},"c":3}`,
		},
		{
			name:  "braces inside string literal",
			input: `{"text":"not a brace }{","n":1}`,
			want:  `{"text":"not a brace }{","n":1}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"text":"say \"}\"","n":1}`,
			want:  `{"text":"say \"}\"","n":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractJSONObjectFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"no object", "just some text"},
		{"unbalanced braces", `{"a": 1`},
		{"only closing brace", "}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractJSONObject(tt.input); !errors.Is(err, ErrNoJSONObject) {
				t.Fatalf("expected ErrNoJSONObject, got %v", err)
			}
		})
	}
}
