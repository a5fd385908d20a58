package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"teamcal/config"
	"teamcal/middleware"
	"teamcal/models"
	"teamcal/store"
	"teamcal/utils"
)

type AuthController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
	users  *store.UserStore
}

func NewAuthController(db *gorm.DB, logger *logrus.Entry) *AuthController {
	return &AuthController{
		DB:     db,
		Logger: logger,
		users:  store.NewUserStore(db),
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	SessionID    string       `json:"sessionId"`
	User         *models.User `json:"user"`
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ac.Logger, err, "Login failed")
	}

	user, err := ac.users.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return respondError(c, ac.Logger, err, "Login failed")
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		ac.Logger.WithField("user_id", user.ID).Warn("Failed login attempt")
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	if !user.Active {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Account is not active")
	}

	return ac.issueTokens(c, user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, ac.Logger, err, "Failed to refresh token")
	}

	claims, err := utils.ParseJWTToken(req.RefreshToken)
	if err != nil || claims.TokenType != utils.TokenTypeRefresh {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}

	user, err := ac.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
		}
		return respondError(c, ac.Logger, err, "Failed to refresh token")
	}
	if !user.Active {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Account is not active")
	}

	return ac.issueTokens(c, user)
}

// Me returns the authenticated user
func (ac *AuthController) Me(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

func (ac *AuthController) issueTokens(c *fiber.Ctx, user *models.User) error {
	accessToken, refreshToken, sessionID, err := utils.GenerateJWTToken(user)
	if err != nil {
		return respondError(c, ac.Logger, err, "Failed to generate tokens")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(config.AppConfig.AccessTokenTTL),
		HTTPOnly: true,
		Secure:   config.AppConfig.Environment == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	ac.Logger.WithFields(logrus.Fields{"user_id": user.ID, "session_id": sessionID}).Info("Session issued")
	return c.JSON(AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sessionID,
		User:         user,
	})
}
