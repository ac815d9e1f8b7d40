package roster

import "time"

// Student is a roster record. (RollNumber, Standard, Section) is unique
// across all students, deactivated ones included.
type Student struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RollNumber string    `json:"rollNumber"`
	Standard   string    `json:"standard"`
	Section    string    `json:"section"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Filter narrows a roster listing.
type Filter struct {
	Standard string
	Section  string
}
