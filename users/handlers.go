package users

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/devconnector-go/apperror"
	"github.com/user/devconnector-go/auth"
)

// maxBodyBytes bounds the registration payload.
const maxBodyBytes = 1 << 20

// UserHandlers provides the HTTP handlers backed by a UserService.
type UserHandlers struct {
	service *UserService
	logger  *zap.Logger
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{service: service, logger: logger}
}

// HandleRegister godoc
// @Summary Register user
// @Description Creates an account and returns a session token for it.
// @Tags users
// @Accept json
// @Produce json
// @Param registerBody body users.RegisterRequest true "Registration details"
// @Success 200 {object} users.TokenResponse "Account created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input, or the email is already registered"
// @Failure 500 {string} string "Server error"
// @Router /api/users [post]
func (h *UserHandlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req RegisterRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			apperror.Write(w, r, h.logger, apperror.NewBadRequestError("Invalid request body", err))
			return
		}

		token, err := h.service.Register(r.Context(), req)
		if err != nil {
			apperror.Write(w, r, h.logger, err)
			return
		}

		apperror.WriteJSON(w, http.StatusOK, TokenResponse{Token: token})
	}
}

// HandleGetAuthUser godoc
// @Summary Get the authenticated user
// @Description Returns the account the session token belongs to.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} users.UserResponse "Current user"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperror.ErrorResponse "Account no longer exists"
// @Failure 500 {string} string "Server error"
// @Router /api/auth [get]
func (h *UserHandlers) HandleGetAuthUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			// Route mounted without auth.Middleware.
			apperror.Write(w, r, h.logger, apperror.NewInternalError("user id missing from context", nil))
			return
		}

		user, err := h.service.GetUser(r.Context(), userID)
		if err != nil {
			apperror.Write(w, r, h.logger, err)
			return
		}

		apperror.WriteJSON(w, http.StatusOK, toResponse(user))
	}
}
