package model

import "time"

// Job represents a posted micro-apprenticeship opportunity.
type Job struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Category     JobCategory `json:"category"`
	Description  string      `json:"description"`
	Skills       []string    `json:"skills"`
	Location     string      `json:"location"`
	DurationDays int         `json:"durationDays"`
	Status       JobStatus   `json:"status"`
	PosterID     string      `json:"posterId"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Application represents a seeker's submitted interest in a job.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	ApplicantID string            `json:"applicantId"`
	Message     string            `json:"message"`
	ResumeURL   string            `json:"resumeUrl"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	AcceptedAt  *time.Time        `json:"acceptedAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}
