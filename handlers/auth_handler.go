package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/esports-arena/tournament-hub/services"
)

const authTokenTTL = 24 * time.Hour

type AuthHandler struct {
	authService  services.AuthService
	userService  services.UserService
	emailService *services.EmailService
	jwtSecret    []byte
	logger       *slog.Logger
}

func NewAuthHandler(authService services.AuthService, userService services.UserService, emailService *services.EmailService, jwtSecret string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userService:  userService,
		emailService: emailService,
		jwtSecret:    []byte(jwtSecret),
		logger:       logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.SignupInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	if input.Username == "" || input.Email == "" || input.Password == "" {
		badRequestResponse(w, errors.New("username, email, and password are required"))
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if h.emailService.Enabled() {
		if err := h.emailService.SendWelcomeEmail(user.Email, user.Username); err != nil {
			// Registration already succeeded; the welcome mail is best-effort.
			h.logger.WarnContext(r.Context(), "failed to send welcome email",
				slog.Int("user_id", user.ID), slog.Any("error", err))
		}
	}

	token, err := h.issueToken(user.ID, string(user.Role), user.Username)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusCreated, jsonResponse{"user": user, "token": token}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, errors.New("email and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.issueToken(user.ID, string(user.Role), user.Username)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"user": user, "token": token}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"user": user}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.Email == "" {
		badRequestResponse(w, errors.New("email is required"))
		return
	}

	resetToken, err := h.authService.GeneratePasswordResetToken(r.Context(), input.Email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// An empty token means the email is not registered; respond identically
	// so the endpoint cannot be used to probe accounts.
	if resetToken != "" && h.emailService.Enabled() {
		if err := h.emailService.SendPasswordResetEmail(input.Email, resetToken); err != nil {
			h.logger.WarnContext(r.Context(), "failed to send password reset email",
				slog.Any("error", err))
		}
	}

	payload := jsonResponse{"message": "if the email is registered, a reset link has been sent"}
	if err := successResponse(w, http.StatusOK, payload); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.Token == "" || input.NewPassword == "" {
		badRequestResponse(w, errors.New("token and new_password are required"))
		return
	}

	if err := h.authService.ResetPasswordByToken(r.Context(), input.Token, input.NewPassword); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"message": "password has been reset"}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) issueToken(userID int, role, name string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"name":    name,
		"exp":     time.Now().Add(authTokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
