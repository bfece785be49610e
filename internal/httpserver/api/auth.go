package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mvucinic/billsight/internal/app"
	"github.com/mvucinic/billsight/internal/auth"
	"github.com/mvucinic/billsight/internal/httpserver/httputil"
	"github.com/mvucinic/billsight/internal/services/users"
)

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user users.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}

type tokenResponse struct {
	AccessToken      string       `json:"access_token"`
	AccessExpiresAt  time.Time    `json:"access_expires_at"`
	RefreshToken     string       `json:"refresh_token"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
	TokenType        string       `json:"token_type"`
	User             userResponse `json:"user"`
}

func toTokenResponse(pair *auth.TokenPair, user users.User) tokenResponse {
	return tokenResponse{
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		TokenType:        "bearer",
		User:             toUserResponse(user),
	}
}

func handleRegister(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload struct {
			Username  string `json:"username"`
			Email     string `json:"email"`
			Password  string `json:"password"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		if err := c.BodyParser(&payload); err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
		}
		if payload.Username == "" || payload.Email == "" || payload.Password == "" {
			return httputil.WriteError(c, fiber.StatusBadRequest, "username, email and password are required")
		}
		if len(payload.Password) < 8 {
			return httputil.WriteError(c, fiber.StatusBadRequest, "password must be at least 8 characters")
		}

		user, err := container.Auth.Register(c.UserContext(), auth.RegisterParams{
			Username:  payload.Username,
			Email:     payload.Email,
			Password:  payload.Password,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
		})
		if err != nil {
			if errors.Is(err, users.ErrAlreadyExists) {
				return httputil.WriteError(c, fiber.StatusConflict, "username or email already registered")
			}
			container.Logger.Error("register failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "registration failed")
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

func handleLogin(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&payload); err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
		}

		pair, user, err := container.Auth.Login(c.UserContext(), payload.Email, payload.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return httputil.WriteError(c, fiber.StatusUnauthorized, "invalid credentials")
			}
			container.Logger.Error("login failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "login failed")
		}
		return c.JSON(toTokenResponse(pair, user))
	}
}

func handleRefresh(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&payload); err != nil || payload.RefreshToken == "" {
			return httputil.WriteError(c, fiber.StatusBadRequest, "refresh_token is required")
		}

		pair, user, err := container.Auth.Refresh(c.UserContext(), payload.RefreshToken)
		if err != nil {
			return httputil.WriteError(c, fiber.StatusUnauthorized, "invalid or expired refresh token")
		}
		return c.JSON(toTokenResponse(pair, user))
	}
}

func handleMe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(toUserResponse(mustCurrentUser(c)))
	}
}
