package transport

import (
	"errors"
	"net/http"

	"joules-shop/internal/cart"
	"joules-shop/internal/domain"
	"joules-shop/internal/middleware"
	"joules-shop/internal/repository"
	"joules-shop/internal/service"
	"joules-shop/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration payload.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// LoginRequest represents the login payload. The identifier may be a
// username or an email address.
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// LoginResponse carries the access token and the user's profile.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *UserProfile `json:"user"`
}

// UserProfile is the public view of a user account.
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}

// UserHandler handles HTTP requests for registration, login, logout and
// profile.
type UserHandler struct {
	users    service.UserService
	sessions session.Store
	carts    *cart.Registry
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, sessions session.Store, carts *cart.Registry, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		sessions: sessions,
		carts:    carts,
		logger:   logger,
	}
}

// RegisterPublicRoutes registers the routes that do not require a token.
// Logout is public because it ends the cookie session, which exists whether
// or not the client holds a valid token.
func (h *UserHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/logout", h.Logout)
}

// RegisterProtectedRoutes registers the routes behind the auth middleware.
func (h *UserHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/api/auth/profile", h.Profile)
}

// Register creates a new user account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if fields := middleware.FormatValidationErrors(err); len(fields) > 0 {
			middleware.RespondWithFieldErrors(w, "validation failed", fields)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCredential) {
			middleware.RespondWithError(w, http.StatusConflict, "username or email already taken")
			return
		}
		h.logger.Error("Failed to register user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, profileOf(user))
}

// Login authenticates a user and issues an access token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.users.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid username/email or password")
			return
		}
		h.logger.Error("Failed to log in user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		User:        profileOf(user),
	})
}

// Logout ends the cookie session: the cart is discarded, the session's
// transient redis state is removed and the cookie is expired. The access
// token itself stays valid until it expires; the client discards it.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if ok {
		h.carts.Drop(sessionID)
		if err := h.sessions.Destroy(r.Context(), sessionID); err != nil {
			h.logger.Warn("Failed to destroy session state", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Profile returns the authenticated user's account details.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid user identity")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get user profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profileOf(user))
}

func profileOf(user *domain.User) *UserProfile {
	return &UserProfile{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
}
