package model

import "time"

// CreateJobRequest is the payload for posting a new job.
type CreateJobRequest struct {
	Title        string      `json:"title" validate:"required,min=3,max=120"`
	Category     JobCategory `json:"category" validate:"required"`
	Description  string      `json:"description" validate:"required,min=10"`
	Skills       []string    `json:"skills" validate:"omitempty,dive,min=1"`
	Location     string      `json:"location" validate:"required"`
	DurationDays int         `json:"durationDays" validate:"required,min=1,max=7"`
}

// SetJobStatusRequest changes a job's status (open/closed/completed).
type SetJobStatusRequest struct {
	Status JobStatus `json:"status" validate:"required"`
}

// SubmitApplicationRequest is the payload for applying to a job.
type SubmitApplicationRequest struct {
	JobID     string `json:"jobId" validate:"required"`
	Message   string `json:"message" validate:"required,min=20"`
	ResumeURL string `json:"resumeUrl" validate:"required,url"`
}

// DeclineApplicationRequest declines an application, optionally keeping an
// undo token the caller can use to restore the prior status.
type DeclineApplicationRequest struct {
	AllowUndo bool `json:"allowUndo"`
}

// UndoDeclineRequest restores a declined application to the status captured
// in the undo token handed out at decline time.
type UndoDeclineRequest struct {
	PreviousStatus ApplicationStatus `json:"previousStatus" validate:"required"`
}

// UndoToken is returned to the caller when a decline allows undo. The window
// in which it may be redeemed is bounded by the caller's UI session, not
// enforced server-side.
type UndoToken struct {
	ApplicationID  string            `json:"applicationId"`
	PreviousStatus ApplicationStatus `json:"previousStatus"`
}

// DeclineApplicationResponse carries the updated application and, when undo
// was requested, the token needed to reverse the decline.
type DeclineApplicationResponse struct {
	Application *Application `json:"application"`
	Undo        *UndoToken   `json:"undo,omitempty"`
}

// CompleteApplicationResponse reports the completion outcome. BadgeError is
// set when the status update committed but badge bookkeeping failed; the
// completion itself is not rolled back in that case.
type CompleteApplicationResponse struct {
	Application *Application `json:"application"`
	Award       *UserBadge   `json:"award,omitempty"`
	BadgeError  *string      `json:"badgeError,omitempty"`
}

// GenerateBadgeRequest is the payload for the standalone badge generation
// endpoint: job metadata in, artwork triple out.
type GenerateBadgeRequest struct {
	Title       string      `json:"title" validate:"required"`
	Category    JobCategory `json:"category" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Skills      []string    `json:"skills"`
	Location    string      `json:"location"`
}

// GenerateBadgeResponse is the artwork triple returned by the generator or
// the fixed fallback.
type GenerateBadgeResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SVG         string `json:"svg"`
	Fallback    bool   `json:"fallback"`
}

// SignUpRequest registers a new account with the auth provider.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignInRequest exchanges credentials for a session.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UploadResumeResponse is returned after a resume upload.
type UploadResumeResponse struct {
	ID        string    `json:"id"`
	FileURL   string    `json:"fileUrl"`
	CreatedAt time.Time `json:"createdAt"`
}
