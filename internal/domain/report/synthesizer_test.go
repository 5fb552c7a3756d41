package report

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

func TestBuildPromptIncludesReviewsAndEmployee(t *testing.T) {
	prompt := BuildPrompt("Alice", "Engineer", []string{
		"Great collaborator, always unblocks others.",
		"Sometimes misses deadlines.",
	})

	for _, want := range []string{
		"Alice",
		"Engineer",
		"1. Great collaborator, always unblocks others.",
		"2. Sometimes misses deadlines.",
		`"ranking"`,
		`"qualities"`,
		`"improvements"`,
		`"summary"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestParseSynthesis(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Synthesis
		wantErr bool
	}{
		{
			name: "bare object",
			raw:  `{"ranking": 7.5, "qualities": ["thorough"], "improvements": ["delegation"], "summary": "Solid month."}`,
			want: Synthesis{Ranking: 7.5, Qualities: []string{"thorough"}, Improvements: []string{"delegation"}, Summary: "Solid month."},
		},
		{
			name: "wrapped in code fence",
			raw:  "```json\n{\"ranking\": 9, \"qualities\": [], \"improvements\": [], \"summary\": \"Excellent.\"}\n```",
			want: Synthesis{Ranking: 9, Qualities: []string{}, Improvements: []string{}, Summary: "Excellent."},
		},
		{
			name: "surrounded by prose",
			raw:  `Here is the evaluation you asked for: {"ranking": 3, "qualities": ["punctual"], "improvements": ["communication"], "summary": "Needs work."} Hope this helps!`,
			want: Synthesis{Ranking: 3, Qualities: []string{"punctual"}, Improvements: []string{"communication"}, Summary: "Needs work."},
		},
		{name: "no json at all", raw: "I cannot help with that.", wantErr: true},
		{name: "missing ranking", raw: `{"qualities": [], "improvements": [], "summary": "x"}`, wantErr: true},
		{name: "missing summary", raw: `{"ranking": 5, "qualities": [], "improvements": []}`, wantErr: true},
		{name: "missing qualities", raw: `{"ranking": 5, "improvements": [], "summary": "x"}`, wantErr: true},
		{name: "missing improvements", raw: `{"ranking": 5, "qualities": [], "summary": "x"}`, wantErr: true},
		{name: "ranking wrong type", raw: `{"ranking": "high", "qualities": [], "improvements": [], "summary": "x"}`, wantErr: true},
		{name: "ranking above range", raw: `{"ranking": 11, "qualities": [], "improvements": [], "summary": "x"}`, wantErr: true},
		{name: "ranking below range", raw: `{"ranking": -1, "qualities": [], "improvements": [], "summary": "x"}`, wantErr: true},
		{name: "qualities wrong type", raw: `{"ranking": 5, "qualities": "good", "improvements": [], "summary": "x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSynthesis(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSynthesis failed: %v", err)
			}
			if got.Ranking != tt.want.Ranking || got.Summary != tt.want.Summary {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			if len(got.Qualities) != len(tt.want.Qualities) || len(got.Improvements) != len(tt.want.Improvements) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSynthesizeBoundaryRankings(t *testing.T) {
	for _, raw := range []string{
		`{"ranking": 0, "qualities": [], "improvements": [], "summary": "x"}`,
		`{"ranking": 10, "qualities": [], "improvements": [], "summary": "x"}`,
	} {
		if _, err := ParseSynthesis(raw); err != nil {
			t.Fatalf("boundary ranking rejected: %v", err)
		}
	}
}

func TestSynthesizeRequiresTexts(t *testing.T) {
	synth := NewSynthesizer(&stubGenerator{})
	if _, err := synth.Synthesize(context.Background(), "Alice", "Engineer", nil); err == nil {
		t.Fatal("expected error for empty texts")
	}
}

func TestSynthesizeWrapsModelFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("boom")}
	synth := NewSynthesizer(gen)

	_, err := synth.Synthesize(context.Background(), "Alice", "Engineer", []string{"solid work"})
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("expected ErrSynthesisFailed, got %v", err)
	}
}
