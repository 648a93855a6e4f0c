package handlers

import (
	"testing"

	"github.com/anjiri1684/skill_swap/database"
	"github.com/anjiri1684/skill_swap/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedbackBody(from, to models.User, rating int) fiber.Map {
	return fiber.Map{
		"fromUserId": from.ID.String(),
		"toUserId":   to.ID.String(),
		"rating":     rating,
		"comment":    "Great swap",
		"skill":      "JS",
	}
}

func reloadUser(t *testing.T, id interface{}) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, database.DB.First(&user, "id = ?", id).Error)
	return user
}

func TestSubmitFeedback_EligibilityGate(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()
	alice := createTestUser(t, "Alice", "user")
	bob := createTestUser(t, "Bob", "user")

	// No swap at all.
	resp, err := app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", feedbackBody(bob, alice, 5)), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// A pending swap is not enough.
	createSwap(t, alice, bob, "pending")
	resp, err = app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", feedbackBody(bob, alice, 5)), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	assert.EqualValues(t, 0, reloadUser(t, alice.ID).TotalRatings)
}

func TestSubmitFeedback_RatingInvariant(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()
	alice := createTestUser(t, "Alice", "user")
	bob := createTestUser(t, "Bob", "user")
	carol := createTestUser(t, "Carol", "user")
	createSwap(t, alice, bob, "completed")
	createSwap(t, carol, alice, "completed")

	resp, err := app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", feedbackBody(bob, alice, 5)), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reloaded := reloadUser(t, alice.ID)
	assert.InDelta(t, 5.0, reloaded.Rating, 0.001)
	assert.Equal(t, 1, reloaded.TotalRatings)

	resp, err = app.Test(authRequest(t, carol, "POST", "/api/v1/feedback", feedbackBody(carol, alice, 2)), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	reloaded = reloadUser(t, alice.ID)
	assert.InDelta(t, 3.5, reloaded.Rating, 0.001)
	assert.Equal(t, 2, reloaded.TotalRatings)

	// The swap is direction agnostic, so the original sender can review too.
	resp, err = app.Test(authRequest(t, alice, "POST", "/api/v1/feedback", feedbackBody(alice, bob, 4)), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.InDelta(t, 4.0, reloadUser(t, bob.ID).Rating, 0.001)
}

func TestSubmitFeedback_DuplicateRejected(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()
	alice := createTestUser(t, "Alice", "user")
	bob := createTestUser(t, "Bob", "user")
	createSwap(t, alice, bob, "completed")

	resp, err := app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", feedbackBody(bob, alice, 5)), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", feedbackBody(bob, alice, 1)), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// The first rating stands untouched.
	reloaded := reloadUser(t, alice.ID)
	assert.InDelta(t, 5.0, reloaded.Rating, 0.001)
	assert.Equal(t, 1, reloaded.TotalRatings)
}

func TestSubmitFeedback_Validation(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()
	alice := createTestUser(t, "Alice", "user")
	bob := createTestUser(t, "Bob", "user")
	createSwap(t, alice, bob, "completed")

	// Rating outside 1..5.
	resp, err := app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", feedbackBody(bob, alice, 6)), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Submitting under somebody else's identity.
	resp, err = app.Test(authRequest(t, alice, "POST", "/api/v1/feedback", feedbackBody(bob, alice, 5)), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Reviewing yourself.
	resp, err = app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", feedbackBody(bob, bob, 5)), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitFeedback_SwapReference(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()
	alice := createTestUser(t, "Alice", "user")
	bob := createTestUser(t, "Bob", "user")
	carol := createTestUser(t, "Carol", "user")
	swap := createSwap(t, alice, bob, "completed")
	unrelated := createSwap(t, alice, carol, "completed")

	// A reference to somebody else's swap is rejected.
	body := feedbackBody(bob, alice, 5)
	body["swapRequestId"] = unrelated.ID.String()
	resp, err := app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// So is an id that does not exist at all.
	body["swapRequestId"] = "9f3f1e6e-0000-0000-0000-000000000000"
	resp, err = app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	assert.EqualValues(t, 0, reloadUser(t, alice.ID).TotalRatings)

	// The pair's own completed swap is accepted and stored.
	body["swapRequestId"] = swap.ID.String()
	resp, err = app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", body), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var feedback models.Feedback
	require.NoError(t, database.DB.First(&feedback, "from_user_id = ?", bob.ID).Error)
	require.NotNil(t, feedback.SwapRequestID)
	assert.Equal(t, swap.ID, *feedback.SwapRequestID)
}

func TestCanLeaveFeedback(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()
	alice := createTestUser(t, "Alice", "user")
	bob := createTestUser(t, "Bob", "user")

	target := "/api/v1/feedback/can-leave?targetId=" + alice.ID.String()

	resp, err := app.Test(authRequest(t, bob, "GET", target, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["canLeave"])
	assert.Equal(t, "No completed skill swap found between users", body["reason"])

	swap := createSwap(t, alice, bob, "completed")

	resp, err = app.Test(authRequest(t, bob, "GET", target, nil), -1)
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, true, body["canLeave"])
	assert.Equal(t, swap.ID.String(), body["swapId"])

	resp, err = app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", feedbackBody(bob, alice, 4)), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(authRequest(t, bob, "GET", target, nil), -1)
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["canLeave"])
	assert.Equal(t, "Feedback already submitted for this user", body["reason"])
}

func TestGetFeedbackForUser(t *testing.T) {
	database.DB = setupTestDB()
	defer closeTestDB()

	app := setupTestApp()
	alice := createTestUser(t, "Alice", "user")
	bob := createTestUser(t, "Bob", "user")
	createSwap(t, alice, bob, "completed")

	resp, err := app.Test(authRequest(t, bob, "POST", "/api/v1/feedback", feedbackBody(bob, alice, 4)), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(newUnauthenticatedRequest("GET", "/api/v1/feedback?userId="+alice.ID.String()), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	feedbackList := body["feedback"].([]interface{})
	require.Len(t, feedbackList, 1)
	entry := feedbackList[0].(map[string]interface{})
	assert.Equal(t, "Bob", entry["fromUserName"])
	assert.EqualValues(t, 4, entry["rating"])
}
