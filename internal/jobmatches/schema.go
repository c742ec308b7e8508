package jobmatches

import (
	"encoding/json"
	"fmt"
	"strings"
)

type rawResult struct {
	MatchScore        int             `json:"match_score"`
	MissingSkills     []string        `json:"missing_skills"`
	ExistingStrengths []string        `json:"existing_strengths"`
	Recommendations   []string        `json:"recommendations"`
	KeywordAnalysis   KeywordAnalysis `json:"keyword_analysis"`
	DetailedFeedback  string          `json:"detailed_feedback"`
}

// ParseResult decodes and validates a model reply against the job match result
// shape. Any mismatch returns ErrSchemaMismatch.
func ParseResult(raw json.RawMessage) (JobMatch, error) {
	var parsed rawResult
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return JobMatch{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if parsed.MatchScore < 0 || parsed.MatchScore > 100 {
		return JobMatch{}, fmt.Errorf("%w: match_score %d out of range", ErrSchemaMismatch, parsed.MatchScore)
	}
	if strings.TrimSpace(parsed.DetailedFeedback) == "" {
		return JobMatch{}, fmt.Errorf("%w: detailed_feedback is empty", ErrSchemaMismatch)
	}

	jm := JobMatch{
		MatchScore:        parsed.MatchScore,
		MissingSkills:     parsed.MissingSkills,
		ExistingStrengths: parsed.ExistingStrengths,
		Recommendations:   parsed.Recommendations,
		KeywordAnalysis:   parsed.KeywordAnalysis,
		DetailedFeedback:  parsed.DetailedFeedback,
	}
	if jm.MissingSkills == nil {
		jm.MissingSkills = []string{}
	}
	if jm.ExistingStrengths == nil {
		jm.ExistingStrengths = []string{}
	}
	if jm.Recommendations == nil {
		jm.Recommendations = []string{}
	}
	if jm.KeywordAnalysis.RequiredKeywords == nil {
		jm.KeywordAnalysis.RequiredKeywords = []string{}
	}
	if jm.KeywordAnalysis.CVKeywords == nil {
		jm.KeywordAnalysis.CVKeywords = []string{}
	}
	if jm.KeywordAnalysis.Matched == nil {
		jm.KeywordAnalysis.Matched = []string{}
	}
	if jm.KeywordAnalysis.Missing == nil {
		jm.KeywordAnalysis.Missing = []string{}
	}
	return jm, nil
}
