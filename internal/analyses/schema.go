package analyses

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResult decodes and validates a model reply against the analysis result
// shape. Any mismatch returns ErrSchemaMismatch so the pipeline fails loudly
// instead of persisting an empty result.
func ParseResult(raw json.RawMessage) (Result, error) {
	var parsed Result
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	if err := dec.Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	if parsed.OverallScore < 0 || parsed.OverallScore > 100 {
		return Result{}, fmt.Errorf("%w: overall_score %d out of range", ErrSchemaMismatch, parsed.OverallScore)
	}
	for name, score := range map[string]int{
		"contact_info": parsed.SectionScores.ContactInfo,
		"summary":      parsed.SectionScores.Summary,
		"experience":   parsed.SectionScores.Experience,
		"education":    parsed.SectionScores.Education,
		"skills":       parsed.SectionScores.Skills,
		"formatting":   parsed.SectionScores.Formatting,
	} {
		if score < 0 || score > 100 {
			return Result{}, fmt.Errorf("%w: section_scores.%s %d out of range", ErrSchemaMismatch, name, score)
		}
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return Result{}, fmt.Errorf("%w: summary is empty", ErrSchemaMismatch)
	}

	if parsed.Strengths == nil {
		parsed.Strengths = []string{}
	}
	if parsed.Weaknesses == nil {
		parsed.Weaknesses = []string{}
	}
	if parsed.Improvements == nil {
		parsed.Improvements = []string{}
	}
	if parsed.Keywords == nil {
		parsed.Keywords = []string{}
	}
	return parsed, nil
}
