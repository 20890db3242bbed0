package e2e

import (
	"net/http"
	"strings"
	"testing"

	"github.com/adnalow/next-level/pkg/response"
)

// A badge row exists for every job from the moment it is posted, carrying
// the fixed fallback artwork until generation upgrades it.
func TestBadge_CreatedWithJob(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)

	resp, err := doUserRequest(t, ta.app, seekerID, "GET", "/api/badges/job/"+jobID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	badge := parseJSON(t, resp)
	if badge["jobId"] != jobID {
		t.Errorf("expected badge for job %q, got %v", jobID, badge["jobId"])
	}
	svg, _ := badge["svg"].(string)
	if !strings.Contains(svg, "<svg") {
		t.Errorf("expected svg markup, got %q", svg)
	}
}

func TestBadge_ForUnknownJob(t *testing.T) {
	ta := setupApp(t)

	resp, err := doUserRequest(t, ta.app, seekerID, "GET", "/api/badges/job/no-such-job", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
	assertErrorCode(t, resp, response.CodeNotFound)
}

// With no generator configured the endpoint still answers with the fixed
// fallback artwork and flags it as such.
func TestGenerateBadge_Fallback(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"title": "Bike repair helper",
		"category": "services",
		"description": "Week of fixing bikes at the community workshop.",
		"skills": ["mechanics"],
		"location": "Old Town"
	}`
	resp, err := doUserRequest(t, ta.app, seekerID, "POST", "/api/badges/generate", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["fallback"] != true {
		t.Errorf("expected fallback artwork, got: %v", result)
	}
	svg, _ := result["svg"].(string)
	if !strings.Contains(svg, "<svg") {
		t.Errorf("expected svg markup, got %q", svg)
	}
}

func TestGenerateBadge_MissingFields(t *testing.T) {
	ta := setupApp(t)

	resp, err := doUserRequest(t, ta.app, seekerID, "POST", "/api/badges/generate", `{"title":"x"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, response.CodeValidationError)
}

func TestBadgesMine_EmptyForNewUser(t *testing.T) {
	ta := setupApp(t)

	resp, err := doUserRequest(t, ta.app, "fresh-user", "GET", "/api/badges/mine", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	list, ok := result["badges"].([]interface{})
	if !ok {
		t.Fatalf("expected badges list, got: %v", result)
	}
	if len(list) != 0 {
		t.Errorf("expected no badges, got %d", len(list))
	}
}

// Two seekers completing apprenticeships on two jobs each earn a
// first-acquisition badge for their own job.
func TestBadge_AcquisitionNumbering(t *testing.T) {
	ta := setupApp(t)

	for _, seeker := range []string{"seeker-a", "seeker-b"} {
		jobID := createJob(t, ta.app, posterID)
		appID := submitApplication(t, ta.app, seeker, jobID)

		resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/accept", "")
		if err != nil {
			t.Fatalf("accept failed: %v", err)
		}
		assertStatus(t, resp, http.StatusOK)
		readBody(t, resp)

		resp, err = doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/complete", "")
		if err != nil {
			t.Fatalf("complete failed: %v", err)
		}
		assertStatus(t, resp, http.StatusOK)

		result := parseJSON(t, resp)
		award, ok := result["award"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected award, got: %v", result)
		}
		if award["acquisitionNumber"] != float64(1) {
			t.Errorf("expected acquisition number 1 for %s, got %v", seeker, award["acquisitionNumber"])
		}
	}
}
