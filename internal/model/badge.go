package model

import "time"

// Badge is the per-job achievement artifact awarded on apprenticeship
// completion. One badge row exists per job, created together with the job.
type Badge struct {
	ID          string      `json:"id"`
	JobID       string      `json:"jobId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	SVG         string      `json:"svg"`
	Category    JobCategory `json:"category"`
	Location    string      `json:"location"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// UserBadge records a single award of a badge to a user. Award rows are
// append-only: never mutated, never deleted.
type UserBadge struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	BadgeID           string    `json:"badgeId"`
	AcquisitionNumber int       `json:"acquisitionNumber"`
	AcquiredAt        time.Time `json:"acquiredAt"`
}

// UserBadgeDetail pairs an award with the badge it references, for listing a
// user's earned badges.
type UserBadgeDetail struct {
	Award UserBadge `json:"award"`
	Badge Badge     `json:"badge"`
}
