package jobmatches

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// KeywordAnalysis compares job posting keywords against the CV.
type KeywordAnalysis struct {
	RequiredKeywords []string `json:"required_keywords"`
	CVKeywords       []string `json:"cv_keywords"`
	Matched          []string `json:"matched"`
	Missing          []string `json:"missing"`
}

// JobMatch is a CV-to-job compatibility analysis. The result fields are
// populated once the status reaches completed.
type JobMatch struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	CVAnalysisID      string          `json:"cvAnalysisId"`
	JobTitle          string          `json:"jobTitle"`
	CompanyName       string          `json:"companyName"`
	JobDescription    string          `json:"jobDescription"`
	Status            string          `json:"status"`
	MatchScore        int             `json:"matchScore"`
	MissingSkills     []string        `json:"missingSkills"`
	ExistingStrengths []string        `json:"existingStrengths"`
	Recommendations   []string        `json:"recommendations"`
	KeywordAnalysis   KeywordAnalysis `json:"keywordAnalysis"`
	DetailedFeedback  string          `json:"detailedFeedback"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
