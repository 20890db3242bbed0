package e2e

import (
	"net/http"
	"testing"

	"github.com/adnalow/next-level/pkg/response"
)

func TestCreateJob_Success(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"title": "Paint a mural",
		"category": "arts",
		"description": "Community center wall needs a spring mural.",
		"skills": ["painting", "design"],
		"location": "Riverside",
		"durationDays": 5
	}`
	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/jobs/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)

	job := parseJSON(t, resp)
	if job["status"] != "open" {
		t.Errorf("expected new job to be open, got %v", job["status"])
	}
	if job["posterId"] != posterID {
		t.Errorf("expected posterId %q, got %v", posterID, job["posterId"])
	}
}

func TestCreateJob_DurationBounds(t *testing.T) {
	ta := setupApp(t)

	cases := []struct {
		name     string
		duration string
		status   int
	}{
		{"zero days rejected", "0", http.StatusBadRequest},
		{"eight days rejected", "8", http.StatusBadRequest},
		{"one day accepted", "1", http.StatusCreated},
		{"seven days accepted", "7", http.StatusCreated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := `{
				"title": "Weekend dog walking",
				"category": "services",
				"description": "Walk two dogs every morning for a week.",
				"location": "Hillcrest",
				"durationDays": ` + tc.duration + `
			}`
			resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/jobs/", body)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			assertStatus(t, resp, tc.status)
		})
	}
}

func TestCreateJob_InvalidCategory(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"title": "Mystery work",
		"category": "witchcraft",
		"description": "Something nobody has a category for.",
		"location": "Nowhere",
		"durationDays": 2
	}`
	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/jobs/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, response.CodeValidationError)
}

func TestCreateJob_Unauthenticated(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, "POST", "/api/jobs/", `{}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestListJobs_OnlyOpen(t *testing.T) {
	ta := setupApp(t)

	openID := createJob(t, ta.app, posterID)
	closedID := createJob(t, ta.app, posterID)

	resp, err := doUserRequest(t, ta.app, posterID, "PATCH", "/api/jobs/"+closedID+"/status", `{"status":"closed"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	resp, err = doUserRequest(t, ta.app, seekerID, "GET", "/api/jobs/", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	jobs, ok := result["jobs"].([]interface{})
	if !ok {
		t.Fatalf("expected jobs list, got: %v", result)
	}
	ids := make(map[string]bool)
	for _, j := range jobs {
		job := j.(map[string]interface{})
		ids[job["id"].(string)] = true
		if job["status"] != "open" {
			t.Errorf("listing contains non-open job %v with status %v", job["id"], job["status"])
		}
	}
	if !ids[openID] {
		t.Errorf("open job %s missing from listing", openID)
	}
	if ids[closedID] {
		t.Errorf("closed job %s present in listing", closedID)
	}
}

func TestListJobs_StatusFilter(t *testing.T) {
	ta := setupApp(t)

	createJob(t, ta.app, posterID)
	closedID := createJob(t, ta.app, posterID)

	resp, err := doUserRequest(t, ta.app, posterID, "PATCH", "/api/jobs/"+closedID+"/status", `{"status":"closed"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	resp, err = doUserRequest(t, ta.app, seekerID, "GET", "/api/jobs/?status=closed", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	jobs := result["jobs"].([]interface{})
	if len(jobs) != 1 {
		t.Fatalf("expected 1 closed job, got %d", len(jobs))
	}
	if jobs[0].(map[string]interface{})["id"] != closedID {
		t.Errorf("expected closed job %s in filtered listing", closedID)
	}

	resp, err = doUserRequest(t, ta.app, seekerID, "GET", "/api/jobs/?status=archived", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestJobStatusTransitions(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)

	// open → completed skips closed and must be rejected
	resp, err := doUserRequest(t, ta.app, posterID, "PATCH", "/api/jobs/"+jobID+"/status", `{"status":"completed"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusConflict)
	assertErrorCode(t, resp, response.CodeInvalidTransition)

	// open → closed
	resp, err = doUserRequest(t, ta.app, posterID, "PATCH", "/api/jobs/"+jobID+"/status", `{"status":"closed"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	// closed → open (reopen)
	resp, err = doUserRequest(t, ta.app, posterID, "PATCH", "/api/jobs/"+jobID+"/status", `{"status":"open"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	job := parseJSON(t, resp)
	if job["status"] != "open" {
		t.Errorf("expected reopened job, got %v", job["status"])
	}
}

func TestJobStatus_OnlyPoster(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)

	resp, err := doUserRequest(t, ta.app, seekerID, "PATCH", "/api/jobs/"+jobID+"/status", `{"status":"closed"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusForbidden)
	assertErrorCode(t, resp, response.CodeForbidden)
}

func TestGetJob_NotFound(t *testing.T) {
	ta := setupApp(t)

	resp, err := doUserRequest(t, ta.app, seekerID, "GET", "/api/jobs/no-such-job", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
	assertErrorCode(t, resp, response.CodeNotFound)
}
