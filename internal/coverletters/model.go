package coverletters

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// CoverLetter is a generation request and, once completed, its letter text.
type CoverLetter struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	CVAnalysisID    string    `json:"cvAnalysisId"`
	JobTitle        string    `json:"jobTitle"`
	CompanyName     string    `json:"companyName"`
	JobDescription  string    `json:"jobDescription"`
	Language        string    `json:"language"`
	GeneratedLetter string    `json:"generatedLetter"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
