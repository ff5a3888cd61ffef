package models

import "time"

// Submission is what a caller supplies. Identity and creation time are never
// part of it; the store assigns both.
type Submission struct {
	Name    string `json:"name"`
	Gender  string `json:"gender"`
	Email   string `json:"email"`
	Country string `json:"country"`
}

// Record is a persisted registration.
type Record struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	Email     string    `json:"email"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord pairs a submission with store-generated fields.
func NewRecord(id int64, sub Submission, createdAt time.Time) Record {
	return Record{
		ID:        id,
		Name:      sub.Name,
		Gender:    sub.Gender,
		Email:     sub.Email,
		Country:   sub.Country,
		CreatedAt: createdAt.UTC(),
	}
}
