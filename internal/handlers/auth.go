package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"devlink/server/internal/apperr"
	"devlink/server/internal/models"
	"devlink/server/internal/utils"
)

// SignupRequest is the signup request body
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	EmailID   string `json:"emailId"`
	Password  string `json:"password"`
}

// LoginRequest is the login request body
type LoginRequest struct {
	EmailID  string `json:"emailId"`
	Password string `json:"password"`
}

func setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  time.Now().Add(utils.TokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// Signup creates a new account and logs it in.
func Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.New(apperr.KindValidation, "Invalid request body"))
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.EmailID = strings.ToLower(strings.TrimSpace(req.EmailID))

	if req.FirstName == "" || req.LastName == "" || req.EmailID == "" || req.Password == "" {
		return fail(c, apperr.New(apperr.KindValidation, "All fields are required"))
	}
	if !strings.Contains(req.EmailID, "@") {
		return fail(c, apperr.New(apperr.KindValidation, "Invalid email address"))
	}
	if len(req.Password) < 8 {
		return fail(c, apperr.New(apperr.KindValidation, "Password must be at least 8 characters"))
	}

	existing, err := stores.Users.FindByEmail(c.Context(), req.EmailID)
	if err != nil {
		return fail(c, err)
	}
	if existing != nil {
		return fail(c, apperr.New(apperr.KindConflict, "An account with this email already exists"))
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fail(c, err)
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		EmailID:   req.EmailID,
		Password:  hash,
		Skills:    []string{},
	}
	if err := stores.Users.Create(c.Context(), user); err != nil {
		return fail(c, err)
	}

	token, err := utils.GenerateToken(user.ID, user.EmailID)
	if err != nil {
		return fail(c, err)
	}
	setAuthCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    user.ToResponse(),
	})
}

// Login authenticates with email and password.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.New(apperr.KindValidation, "Invalid request body"))
	}

	req.EmailID = strings.ToLower(strings.TrimSpace(req.EmailID))
	if req.EmailID == "" || req.Password == "" {
		return fail(c, apperr.New(apperr.KindValidation, "Email and password are required"))
	}

	user, err := stores.Users.FindByEmail(c.Context(), req.EmailID)
	if err != nil {
		return fail(c, err)
	}
	if user == nil || !utils.CheckPassword(req.Password, user.Password) {
		return fail(c, apperr.New(apperr.KindAuthentication, "Invalid credentials"))
	}

	token, err := utils.GenerateToken(user.ID, user.EmailID)
	if err != nil {
		return fail(c, err)
	}
	setAuthCookie(c, token)

	return ok(c, user.ToResponse())
}

// Logout clears the session cookie.
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return ok(c, fiber.Map{"message": "Logged out successfully"})
}

// GetMe returns the authenticated user's profile.
func GetMe(c *fiber.Ctx) error {
	user, err := stores.Users.FindByID(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	if user == nil {
		return fail(c, apperr.New(apperr.KindNotFound, "User not found"))
	}
	return ok(c, user.ToResponse())
}
