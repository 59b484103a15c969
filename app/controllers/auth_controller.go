package controllers

import (
	"crypto/sha256"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/auth"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRegister creates an account with the signup credit grant and returns
// a fresh token pair.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Email already registered"})
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}
	if err := repo.Create(user); err != nil {
		log.Errorf("[Auth] Failed to create user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Registration failed"})
	}

	return issueTokens(c, user, fiber.StatusCreated)
}

// HandleLogin verifies credentials and returns a fresh token pair.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid email or password"})
		}
		log.Errorf("[Auth] Login lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Login failed"})
	}

	if !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid email or password"})
	}
	if !user.IsActive() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Account disabled"})
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		log.Errorf("[Auth] Failed to update last login for user %d: %v", user.ID, err)
	}

	return issueTokens(c, user, fiber.StatusOK)
}

// HandleRefresh rotates the token pair. The presented refresh token must
// match the bcrypt hash stored at last issuance.
func HandleRefresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "refresh_token required"})
	}

	claims, err := auth.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid or expired refresh token"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Unknown account"})
	}

	if user.RefreshTokenHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.RefreshTokenHash), refreshTokenDigest(req.RefreshToken)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Refresh token revoked"})
	}

	return issueTokens(c, user, fiber.StatusOK)
}

// refreshTokenDigest shortens the token below bcrypt's 72-byte input limit.
func refreshTokenDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

func issueTokens(c *fiber.Ctx, user *models.User, status int) error {
	accessToken, err := auth.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		log.Errorf("[Auth] Failed to sign access token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token issuance failed"})
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		log.Errorf("[Auth] Failed to sign refresh token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token issuance failed"})
	}

	hash, err := bcrypt.GenerateFromPassword(refreshTokenDigest(refreshToken), bcrypt.DefaultCost)
	if err == nil {
		if uErr := repository.GetGlobalFactory().GetUserRepository().UpdateRefreshTokenHash(user.ID, string(hash)); uErr != nil {
			log.Errorf("[Auth] Failed to store refresh token hash for user %d: %v", user.ID, uErr)
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":      user.ID,
			"name":    user.Name,
			"email":   user.Email,
			"credits": user.Credits,
		},
	})
}
