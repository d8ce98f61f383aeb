package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{name: "nil response", resp: nil, want: ""},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, want: ""},
		{name: "nil content", resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, want: ""},
		{name: "whitespace-only reply", resp: textResponse(genai.Text(" \n ")), want: ""},
		{name: "single part", resp: textResponse(genai.Text("3, 7, 12\n")), want: "3, 7, 12"},
		{name: "parts flattened", resp: textResponse(genai.Text("first "), genai.Text("second")), want: "first second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.want {
				t.Errorf("responseText() = %q, want %q", got, tt.want)
			}
		})
	}
}
