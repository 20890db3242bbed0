package model

// Job status
type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusClosed    JobStatus = "closed"
	JobStatusCompleted JobStatus = "completed"
)

var ValidJobStatuses = []JobStatus{
	JobStatusOpen, JobStatusClosed, JobStatusCompleted,
}

// IsValidJobStatus reports whether s is a known job status.
func IsValidJobStatus(s JobStatus) bool {
	for _, v := range ValidJobStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Job categories
type JobCategory string

const (
	CategoryTechnology JobCategory = "technology"
	CategoryEducation  JobCategory = "education"
	CategoryArts       JobCategory = "arts"
	CategoryServices   JobCategory = "services"
	CategoryLabor      JobCategory = "labor"
	CategoryBusiness   JobCategory = "business"
	CategoryOther      JobCategory = "other"
)

var ValidJobCategories = []JobCategory{
	CategoryTechnology, CategoryEducation, CategoryArts,
	CategoryServices, CategoryLabor, CategoryBusiness, CategoryOther,
}

// IsValidJobCategory reports whether c is a known category.
func IsValidJobCategory(c JobCategory) bool {
	for _, v := range ValidJobCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Application status.
//
// Historically both "pending" and "applied" were written for a freshly
// submitted application. They mean the same thing — awaiting the poster's
// decision — and "applied" is the canonical spelling. Records carrying
// either spelling are accepted; new records are always written as "applied".
type ApplicationStatus string

const (
	ApplicationStatusPending    ApplicationStatus = "pending"
	ApplicationStatusApplied    ApplicationStatus = "applied"
	ApplicationStatusInProgress ApplicationStatus = "in_progress"
	ApplicationStatusCompleted  ApplicationStatus = "completed"
	ApplicationStatusDeclined   ApplicationStatus = "declined"
)

var ValidApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending, ApplicationStatusApplied,
	ApplicationStatusInProgress, ApplicationStatusCompleted,
	ApplicationStatusDeclined,
}

// IsValidApplicationStatus reports whether s is a known application status.
func IsValidApplicationStatus(s ApplicationStatus) bool {
	for _, v := range ValidApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// NormalizeApplicationStatus maps the legacy "pending" alias to "applied".
// All other values pass through unchanged.
func NormalizeApplicationStatus(s ApplicationStatus) ApplicationStatus {
	if s == ApplicationStatusPending {
		return ApplicationStatusApplied
	}
	return s
}

// IsAwaitingDecision reports whether an application is still waiting for the
// poster to accept or decline it.
func IsAwaitingDecision(s ApplicationStatus) bool {
	return NormalizeApplicationStatus(s) == ApplicationStatusApplied
}

// Job duration bounds in days.
const (
	MinDurationDays = 1
	MaxDurationDays = 7
)
