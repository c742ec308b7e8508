package optimizedcvs

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// OptimizedCV is a job-targeted rewrite of an uploaded CV.
type OptimizedCV struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	JobMatchID        string    `json:"jobMatchAnalysisId"`
	OptimizedContent  string    `json:"optimizedContent"`
	OptimizationNotes []string  `json:"optimizationNotes"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
