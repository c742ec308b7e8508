package analyses

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Analysis is an uploaded CV together with its processing state.
type Analysis struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	FileName   string    `json:"fileName"`
	StorageKey string    `json:"-"`
	FileSize   int64     `json:"fileSize"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SectionScores grades the individual parts of a CV.
type SectionScores struct {
	ContactInfo int `json:"contact_info"`
	Summary     int `json:"summary"`
	Experience  int `json:"experience"`
	Education   int `json:"education"`
	Skills      int `json:"skills"`
	Formatting  int `json:"formatting"`
}

// Result is the structured outcome of a completed analysis.
type Result struct {
	ID            string        `json:"-"`
	AnalysisID    string        `json:"-"`
	OverallScore  int           `json:"overall_score"`
	Summary       string        `json:"summary"`
	Strengths     []string      `json:"strengths"`
	Weaknesses    []string      `json:"weaknesses"`
	Improvements  []string      `json:"improvements"`
	SectionScores SectionScores `json:"section_scores"`
	Keywords      []string      `json:"keywords"`
	AIFeedback    string        `json:"ai_feedback"`
	CreatedAt     time.Time     `json:"-"`
}
