package credits

import "time"

// Balance is a user's current credit balance.
type Balance struct {
	UserID    string    `json:"userId"`
	Credits   int       `json:"credits"`
	UpdatedAt time.Time `json:"updatedAt"`
}
