package analyses

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseResultValid(t *testing.T) {
	res, err := ParseResult(json.RawMessage(validResultJSON))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if res.OverallScore != 82 {
		t.Fatalf("expected overall score 82, got %d", res.OverallScore)
	}
	if res.SectionScores.Formatting != 70 {
		t.Fatalf("expected formatting score 70, got %d", res.SectionScores.Formatting)
	}
	if len(res.Strengths) != 2 {
		t.Fatalf("expected 2 strengths, got %d", len(res.Strengths))
	}
}

func TestParseResultNilSlicesBecomeEmpty(t *testing.T) {
	raw := `{
  "overall_score": 50,
  "summary": "ok",
  "section_scores": {"contact_info": 50, "summary": 50, "experience": 50, "education": 50, "skills": 50, "formatting": 50}
}`
	res, err := ParseResult(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if res.Strengths == nil || res.Weaknesses == nil || res.Improvements == nil || res.Keywords == nil {
		t.Fatalf("expected nil slices normalized to empty, got %+v", res)
	}
}

func TestParseResultRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{not-json`},
		{"score above range", `{"overall_score": 150, "summary": "x"}`},
		{"score below range", `{"overall_score": -1, "summary": "x"}`},
		{"section score out of range", `{"overall_score": 50, "summary": "x", "section_scores": {"contact_info": 101}}`},
		{"empty summary", `{"overall_score": 50, "summary": "  "}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseResult(json.RawMessage(tc.raw)); !errors.Is(err, ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v", err)
			}
		})
	}
}
