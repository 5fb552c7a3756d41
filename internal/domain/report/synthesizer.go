package report

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Generator is the text-in/text-out surface of the language model API. The
// platform ai package implements it against Gemini.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Synthesizer turns a month's raw review texts into a structured Synthesis
// via one model call. Malformed output is a hard failure for that month; no
// retry is attempted.
type Synthesizer struct {
	Model Generator
}

func NewSynthesizer(model Generator) *Synthesizer {
	return &Synthesizer{Model: model}
}

func (s *Synthesizer) Synthesize(ctx context.Context, employeeName, employeeTitle string, texts []string) (Synthesis, error) {
	if len(texts) == 0 {
		return Synthesis{}, fmt.Errorf("synthesizer requires at least one review text")
	}

	raw, err := s.Model.Generate(ctx, BuildPrompt(employeeName, employeeTitle, texts))
	if err != nil {
		return Synthesis{}, fmt.Errorf("%w: model call: %v", ErrSynthesisFailed, err)
	}
	return ParseSynthesis(raw)
}

// BuildPrompt asks for a bare JSON object so ParseSynthesis has a fighting
// chance even when the model wraps its answer in prose or a code fence.
func BuildPrompt(employeeName, employeeTitle string, texts []string) string {
	var b strings.Builder
	b.WriteString("You are an HR analyst. Below are peer reviews collected for the employee ")
	fmt.Fprintf(&b, "%q, who works as %q.\n\n", employeeName, employeeTitle)
	b.WriteString("Reviews:\n")
	for i, text := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, text)
	}
	b.WriteString("\nSummarize this employee's performance for the month. ")
	b.WriteString("Respond with a single JSON object and nothing else, with exactly these fields:\n")
	b.WriteString(`{"ranking": <number between 0 and 10>, "qualities": [<strengths as strings>], "improvements": [<improvement areas as strings>], "summary": "<short free-text summary>"}`)
	b.WriteString("\n")
	return b.String()
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseSynthesis extracts the outermost JSON object from the raw model text
// and validates every field's presence and type.
func ParseSynthesis(raw string) (Synthesis, error) {
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return Synthesis{}, fmt.Errorf("%w: no JSON object in model output", ErrMalformedResponse)
	}

	var payload struct {
		Ranking      *float64  `json:"ranking"`
		Improvements *[]string `json:"improvements"`
		Qualities    *[]string `json:"qualities"`
		Summary      *string   `json:"summary"`
	}
	if err := json.Unmarshal([]byte(match), &payload); err != nil {
		return Synthesis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch {
	case payload.Ranking == nil:
		return Synthesis{}, fmt.Errorf("%w: missing ranking", ErrMalformedResponse)
	case payload.Improvements == nil:
		return Synthesis{}, fmt.Errorf("%w: missing improvements", ErrMalformedResponse)
	case payload.Qualities == nil:
		return Synthesis{}, fmt.Errorf("%w: missing qualities", ErrMalformedResponse)
	case payload.Summary == nil:
		return Synthesis{}, fmt.Errorf("%w: missing summary", ErrMalformedResponse)
	}
	if *payload.Ranking < 0 || *payload.Ranking > 10 {
		return Synthesis{}, fmt.Errorf("%w: ranking %v out of range", ErrMalformedResponse, *payload.Ranking)
	}

	return Synthesis{
		Ranking:      *payload.Ranking,
		Improvements: *payload.Improvements,
		Qualities:    *payload.Qualities,
		Summary:      *payload.Summary,
	}, nil
}
