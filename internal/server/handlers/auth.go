package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/medicnote/internal/models"
	"github.com/iudanet/medicnote/internal/server/storage"
	"github.com/iudanet/medicnote/internal/validation"
	"github.com/iudanet/medicnote/pkg/api"
)

// bcrypt ignores input past this length
const maxPasswordBytes = 72

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateAccessToken(userID, username string) (string, int64, error)
}

// AuthHandler serves registration and login
type AuthHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	tokens   TokenIssuer
	now      func() time.Time
	hashCost int
}

// NewAuthHandler creates a new handler for authentication
func NewAuthHandler(logger *slog.Logger, users storage.UserStorage, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		users:    users,
		tokens:   tokens,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode register request", "error", err)
		SendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "Invalid username", "username", req.Username, "error", err)
		SendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		SendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Password) > maxPasswordBytes {
		SendError(h.logger, w, "password must not exceed 72 bytes", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.hashCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to hash password", "error", err)
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := h.now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "User already exists", "username", req.Username)
			SendError(h.logger, w, "username already taken", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to create user", "error", err)
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "User registered",
		"username", user.Username,
		"user_id", user.ID)

	SendJSON(h.logger, w, api.RegisterResponse{
		UserID:  user.ID,
		Message: "User registered successfully",
	}, http.StatusCreated)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode login request", "error", err)
		SendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		SendError(h.logger, w, "username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "Login failed: user not found", "username", req.Username)
			SendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to get user", "error", err)
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "Login failed: wrong password", "username", req.Username)
		SendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	accessToken, expiresIn, err := h.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to generate access token", "error", err)
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "User logged in",
		"username", user.Username,
		"user_id", user.ID)

	SendJSON(h.logger, w, api.TokenResponse{
		AccessToken: accessToken,
		UserID:      user.ID,
		ExpiresIn:   expiresIn,
	}, http.StatusOK)
}
