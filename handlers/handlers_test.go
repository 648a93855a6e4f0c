package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/anjiri1684/skill_swap/database"
	"github.com/anjiri1684/skill_swap/middleware"
	"github.com/anjiri1684/skill_swap/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	os.Setenv("JWT_SECRET", "test-secret-key")
}

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect to test database")
	}

	// A single connection keeps every query on the same in-memory database.
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	db.AutoMigrate(&models.User{}, &models.SwapRequest{}, &models.Feedback{}, &models.Notification{})

	return db
}

// setupTestApp wires the real route surface against the real middleware.
func setupTestApp() *fiber.App {
	app := fiber.New()
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", RegisterUser)
	auth.Post("/login", LoginUser)
	auth.Post("/logout", LogoutUser)
	auth.Get("/me", middleware.Protected(), GetCurrentUser)

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("/me", GetProfile)
	profile.Put("/me", UpdateProfile)

	users := api.Group("/users")
	users.Get("", ListUsers)
	users.Get("/:userId", GetUser)

	requests := api.Group("/requests", middleware.Protected())
	requests.Get("", GetMyRequests)
	requests.Post("", CreateRequest)
	requests.Get("/:requestId", GetRequest)
	requests.Put("/:requestId", UpdateRequestStatus)
	requests.Delete("/:requestId", DeleteRequest)

	feedback := api.Group("/feedback")
	feedback.Get("", GetFeedbackForUser)
	feedback.Get("/can-leave", middleware.Protected(), CanLeaveFeedback)
	feedback.Post("", middleware.Protected(), SubmitFeedback)

	notifications := api.Group("/notifications", middleware.Protected())
	notifications.Get("", GetMyNotifications)
	notifications.Put("/:notificationId/read", MarkNotificationRead)

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/users", GetAllUsers)
	admin.Post("/users/:userId/ban", BanUser)
	admin.Post("/users/:userId/unban", UnbanUser)
	admin.Post("/users/:userId/reject-skill", RejectSkill)
	admin.Get("/swaps", AdminGetSwaps)
	admin.Post("/swaps/:requestId/status", ForceSwapStatus)
	admin.Get("/feedback", AdminGetFeedback)
	admin.Delete("/feedback/:feedbackId", AdminDeleteFeedback)
	admin.Post("/feedback/:feedbackId/flag", FlagFeedback)
	admin.Post("/broadcast", BroadcastMessage)
	admin.Get("/reports", GenerateReport)
	admin.Get("/dashboard-analytics", GetDashboardAnalytics)

	return app
}

func createTestUser(t *testing.T, name, role string) models.User {
	t.Helper()
	user := models.User{
		Name:          name,
		Email:         strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password:      "hashed",
		Role:          role,
		SkillsOffered: []string{},
		SkillsWanted:  []string{},
		Availability:  []string{},
		IsPublic:      true,
		Status:        "active",
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return user
}

// authRequest builds a request carrying the user's session token in the
// auth-token cookie, the same transport the frontend uses.
func authRequest(t *testing.T, user models.User, method, target string, body interface{}) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := signToken(user)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "auth-token", Value: token})

	return req
}

func newUnauthenticatedRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func closeTestDB() {
	sqlDB, _ := database.DB.DB()
	sqlDB.Close()
}
