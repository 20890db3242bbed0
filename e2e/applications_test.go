package e2e

import (
	"net/http"
	"testing"

	"github.com/adnalow/next-level/pkg/response"
)

func TestSubmitApplication_Success(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)

	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, seekerID, "GET", "/api/applications/"+appID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	application := parseJSON(t, resp)
	if application["status"] != "applied" {
		t.Errorf("expected status applied, got %v", application["status"])
	}
	if application["applicantId"] != seekerID {
		t.Errorf("expected applicantId %q, got %v", seekerID, application["applicantId"])
	}
}

func TestSubmitApplication_ShortMessage(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)

	body := `{
		"jobId": "` + jobID + `",
		"message": "too short",
		"resumeUrl": "https://example.com/resume.pdf"
	}`
	resp, err := doUserRequest(t, ta.app, seekerID, "POST", "/api/applications/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, response.CodeValidationError)
}

func TestSubmitApplication_BadResumeURL(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)

	body := `{
		"jobId": "` + jobID + `",
		"message": "I can absolutely do this job, twenty chars and more.",
		"resumeUrl": "not-a-real-url"
	}`
	resp, err := doUserRequest(t, ta.app, seekerID, "POST", "/api/applications/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, response.CodeValidationError)
}

func TestSubmitApplication_Duplicate(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	submitApplication(t, ta.app, seekerID, jobID)

	body := `{
		"jobId": "` + jobID + `",
		"message": "Trying a second time with a different cover letter.",
		"resumeUrl": "https://example.com/resume-v2.pdf"
	}`
	resp, err := doUserRequest(t, ta.app, seekerID, "POST", "/api/applications/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusConflict)
	assertErrorCode(t, resp, response.CodeDuplicateApplication)
}

func TestSubmitApplication_OwnJob(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)

	body := `{
		"jobId": "` + jobID + `",
		"message": "Applying to my own posting just to see what happens.",
		"resumeUrl": "https://example.com/resume.pdf"
	}`
	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, response.CodeValidationError)
}

func TestSubmitApplication_ClosedJob(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)

	resp, err := doUserRequest(t, ta.app, posterID, "PATCH", "/api/jobs/"+jobID+"/status", `{"status":"closed"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	body := `{
		"jobId": "` + jobID + `",
		"message": "Hoping there is still room even though it is closed.",
		"resumeUrl": "https://example.com/resume.pdf"
	}`
	resp, err = doUserRequest(t, ta.app, seekerID, "POST", "/api/applications/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusConflict)
	assertErrorCode(t, resp, response.CodeInvalidTransition)
}

// Accepting one application declines every sibling and closes the job.
func TestAccept_Cascade(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)

	acceptedID := submitApplication(t, ta.app, "seeker-a", jobID)
	siblingID := submitApplication(t, ta.app, "seeker-b", jobID)

	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+acceptedID+"/accept", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	accepted := parseJSON(t, resp)
	if accepted["status"] != "in_progress" {
		t.Errorf("expected accepted application in_progress, got %v", accepted["status"])
	}
	if accepted["acceptedAt"] == nil {
		t.Error("expected acceptedAt to be set")
	}

	// Sibling is declined
	resp, err = doUserRequest(t, ta.app, posterID, "GET", "/api/applications/"+siblingID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	sibling := parseJSON(t, resp)
	if sibling["status"] != "declined" {
		t.Errorf("expected sibling declined, got %v", sibling["status"])
	}

	// Job is closed
	resp, err = doUserRequest(t, ta.app, posterID, "GET", "/api/jobs/"+jobID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	job := parseJSON(t, resp)
	if job["status"] != "closed" {
		t.Errorf("expected job closed after accept, got %v", job["status"])
	}
}

func TestAccept_OnlyAwaiting(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/accept", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	// Second accept of the same (now in-progress) application is rejected.
	resp, err = doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/accept", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusConflict)
	assertErrorCode(t, resp, response.CodeInvalidTransition)
}

func TestAccept_OnlyPoster(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, seekerID, "POST", "/api/applications/"+appID+"/accept", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusForbidden)
	assertErrorCode(t, resp, response.CodeForbidden)
}

func TestDecline_WithUndoToken(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/decline", `{"allowUndo":true}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	application := result["application"].(map[string]interface{})
	if application["status"] != "declined" {
		t.Errorf("expected declined, got %v", application["status"])
	}
	undo, ok := result["undo"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected undo token in response: %v", result)
	}
	if undo["previousStatus"] != "applied" {
		t.Errorf("expected undo token to capture applied, got %v", undo["previousStatus"])
	}
}

func TestDecline_WithoutUndoToken(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/decline", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if _, ok := result["undo"]; ok {
		t.Error("expected no undo token when allowUndo is false")
	}
}

func TestUndoDecline_RoundTrip(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/decline", `{"allowUndo":true}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	result := parseJSON(t, resp)
	undo := result["undo"].(map[string]interface{})
	previous := undo["previousStatus"].(string)

	resp, err = doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/undo-decline",
		`{"previousStatus":"`+previous+`"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	application := parseJSON(t, resp)
	if application["status"] != previous {
		t.Errorf("expected status restored to %q, got %v", previous, application["status"])
	}
}

func TestUndoDecline_OnlyDeclined(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/undo-decline",
		`{"previousStatus":"applied"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusConflict)
	assertErrorCode(t, resp, response.CodeInvalidTransition)
}

func TestUndoDecline_RejectsBogusStatus(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/decline", `{"allowUndo":true}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	readBody(t, resp)

	resp, err = doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/undo-decline",
		`{"previousStatus":"completed"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
	assertErrorCode(t, resp, response.CodeValidationError)
}

func TestComplete_AwardsBadge(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/accept", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	readBody(t, resp)

	resp, err = doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/complete", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	application := result["application"].(map[string]interface{})
	if application["status"] != "completed" {
		t.Errorf("expected completed, got %v", application["status"])
	}
	if application["completedAt"] == nil {
		t.Error("expected completedAt to be set")
	}
	if result["badgeError"] != nil {
		t.Errorf("unexpected badge error: %v", result["badgeError"])
	}
	award, ok := result["award"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected award in response: %v", result)
	}
	if award["acquisitionNumber"] != float64(1) {
		t.Errorf("expected first award to be number 1, got %v", award["acquisitionNumber"])
	}
	if award["userId"] != seekerID {
		t.Errorf("expected award for %q, got %v", seekerID, award["userId"])
	}

	// The award shows up in the seeker's badge list.
	resp, err = doUserRequest(t, ta.app, seekerID, "GET", "/api/badges/mine", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	badges := parseJSON(t, resp)
	list, ok := badges["badges"].([]interface{})
	if !ok || len(list) != 1 {
		t.Fatalf("expected one earned badge, got: %v", badges)
	}
}

func TestComplete_OnlyInProgress(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, posterID, "POST", "/api/applications/"+appID+"/complete", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusConflict)
	assertErrorCode(t, resp, response.CodeInvalidTransition)
}

func TestGetApplication_ThirdPartyForbidden(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	appID := submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, "someone-else", "GET", "/api/applications/"+appID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusForbidden)
	assertErrorCode(t, resp, response.CodeForbidden)
}

func TestListApplicationsByJob_OnlyPoster(t *testing.T) {
	ta := setupApp(t)
	jobID := createJob(t, ta.app, posterID)
	submitApplication(t, ta.app, seekerID, jobID)

	resp, err := doUserRequest(t, ta.app, seekerID, "GET", "/api/jobs/"+jobID+"/applications", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusForbidden)

	resp, err = doUserRequest(t, ta.app, posterID, "GET", "/api/jobs/"+jobID+"/applications", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	result := parseJSON(t, resp)
	apps, ok := result["applications"].([]interface{})
	if !ok || len(apps) != 1 {
		t.Fatalf("expected one application, got: %v", result)
	}
}
