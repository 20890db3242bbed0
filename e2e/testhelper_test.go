package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/adnalow/next-level/internal/auth"
	"github.com/adnalow/next-level/internal/badgeart"
	"github.com/adnalow/next-level/internal/client"
	"github.com/adnalow/next-level/internal/config"
	"github.com/adnalow/next-level/internal/handler"
	"github.com/adnalow/next-level/internal/middleware"
	"github.com/adnalow/next-level/internal/service"
	"github.com/adnalow/next-level/internal/store/memory"
	ws "github.com/adnalow/next-level/internal/websocket"
)

const testJWTSecret = "test-secret-for-e2e"

const (
	posterID = "poster-user-1"
	seekerID = "seeker-user-1"
)

// testApp holds all components needed for testing
type testApp struct {
	app *fiber.App
}

// setupApp creates a Fiber app identical to main.go but with unconfigured
// external clients and in-memory storage. This triggers mock/fallback
// responses in all services, and badge artwork stays at the fixed fallback.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	// Redis (localhost — the rate limiter fails open if unavailable)
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})

	validate := validator.New()

	// External clients — all unconfigured so services use mock fallbacks
	generatorClient := client.NewGeneratorClient(&config.GeneratorConfig{}) // no API key → fallback art

	// In-memory stores
	stores := memory.New().Stores()

	hub := ws.NewHub()
	go hub.Run()

	// Services — nil asynq client keeps artwork generation inline
	remoteGenerator := badgeart.NewRemoteGenerator(generatorClient)
	badgeService := service.NewBadgeService(stores.Badges, stores.UserBadges, remoteGenerator, nil)
	jobService := service.NewJobService(stores.Jobs, badgeService)
	applicationService := service.NewApplicationService(stores.Applications, stores.Jobs, badgeService)
	uploadService := service.NewUploadService(nil)

	// Handlers
	jobHandler := handler.NewJobHandler(jobService, validate)
	applicationHandler := handler.NewApplicationHandler(applicationService, validate, hub)
	badgeHandler := handler.NewBadgeHandler(badgeService, validate)
	uploadHandler := handler.NewUploadHandler(uploadService)
	authHandler := handler.NewAuthHandler(nil, testJWTSecret, validate)

	// Auth middleware — legacy HMAC only
	authMiddleware := middleware.NewLegacyAuthMiddleware(testJWTSecret)
	requireAuth := authMiddleware.Authenticate()
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 12 * 1024 * 1024,
	})

	// Base routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"generator": false,
				"store":     false,
				"auth":      true,
				"r2":        false,
				"queue":     false,
			},
		})
	})

	app.Post("/auth/signup", authHandler.SignUp)
	app.Post("/auth/signin", authHandler.SignIn)
	app.Get("/auth/session", requireAuth, authHandler.Session)

	// API routes (authenticated), with very high rate limits so tests
	// don't get blocked
	api := app.Group("/api", requireAuth)

	jobs := api.Group("/jobs")
	jobs.Post("/", rateLimiter.JobsLimit(10000), jobHandler.Create)
	jobs.Get("/", jobHandler.List)
	jobs.Get("/mine", jobHandler.Mine)
	jobs.Get("/:id", jobHandler.Get)
	jobs.Patch("/:id/status", jobHandler.SetStatus)
	jobs.Get("/:id/applications", applicationHandler.ListByJob)

	applications := api.Group("/applications")
	applications.Post("/", rateLimiter.ApplyLimit(10000), applicationHandler.Submit)
	applications.Get("/mine", applicationHandler.Mine)
	applications.Get("/:id", applicationHandler.Get)
	applications.Post("/:id/accept", applicationHandler.Accept)
	applications.Post("/:id/decline", applicationHandler.Decline)
	applications.Post("/:id/undo-decline", applicationHandler.Undo)
	applications.Post("/:id/complete", applicationHandler.Complete)

	badges := api.Group("/badges")
	badges.Get("/mine", badgeHandler.Mine)
	badges.Get("/job/:jobId", badgeHandler.ForJob)
	badges.Post("/generate", rateLimiter.GenerateLimit(10000), badgeHandler.Generate)

	uploads := api.Group("/uploads", rateLimiter.UploadLimit(10000))
	uploads.Post("/resume", uploadHandler.Resume)

	return &testApp{app: app}
}

// generateToken creates a legacy HMAC JWT token for the given user.
func generateToken(t *testing.T, userID, email string) string {
	t.Helper()
	claims := auth.LegacyClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "next-level-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doUserRequest performs a request authenticated as the given user.
func doUserRequest(t *testing.T, app *fiber.App, userID, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t, userID, userID+"@example.com")
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// parseJSONList parses response body into a slice.
func parseJSONList(t *testing.T, resp *http.Response) []interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result []interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON list: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// assertErrorCode checks the error envelope code. Consumes the body.
func assertErrorCode(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got: %v", result)
	}
	if errObj["code"] != expected {
		t.Errorf("expected error code %q, got %q", expected, errObj["code"])
	}
}

// createJob posts a valid job as the given user and returns its ID.
func createJob(t *testing.T, app *fiber.App, userID string) string {
	t.Helper()
	body := `{
		"title": "Garden fence repair",
		"category": "labor",
		"description": "Fix the back garden fence, two broken panels.",
		"skills": ["carpentry"],
		"location": "Springfield",
		"durationDays": 3
	}`
	resp, err := doUserRequest(t, app, userID, "POST", "/api/jobs/", body)
	if err != nil {
		t.Fatalf("create job request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)
	job := parseJSON(t, resp)
	id, _ := job["id"].(string)
	if id == "" {
		t.Fatalf("created job has no id: %v", job)
	}
	return id
}

// submitApplication applies to a job as the given user and returns the
// application ID.
func submitApplication(t *testing.T, app *fiber.App, userID, jobID string) string {
	t.Helper()
	body := `{
		"jobId": "` + jobID + `",
		"message": "I have done plenty of fence work and can start tomorrow.",
		"resumeUrl": "https://cdn.next-level.app/resumes/` + userID + `/resume.pdf"
	}`
	resp, err := doUserRequest(t, app, userID, "POST", "/api/applications/", body)
	if err != nil {
		t.Fatalf("submit application request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)
	application := parseJSON(t, resp)
	id, _ := application["id"].(string)
	if id == "" {
		t.Fatalf("created application has no id: %v", application)
	}
	return id
}
