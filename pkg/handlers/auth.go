package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"cheatsheets/pkg/auth"
	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/middleware"
	"cheatsheets/pkg/models"
)

// AuthHandlers serves registration, login and the profile endpoint
type AuthHandlers struct {
	users     *auth.Directory
	jwt       *auth.JWT
	validator *errors.Validator
	logger    zerolog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(users *auth.Directory, jwt *auth.JWT, logger zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		users:     users,
		jwt:       jwt,
		validator: errors.NewValidator(),
		logger:    logger,
	}
}

func (h *AuthHandlers) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := h.jwt.Sign(user.ID)
	if err != nil {
		writeError(w, h.logger, errors.Wrap(err, errors.ErrTypeApp, "TOKEN_SIGN_FAILED", "failed to sign token"))
		return
	}
	writeJSON(w, status, models.AuthResponse{AccessToken: token, User: user})
}

// RegisterHandler creates an account and signs it in
func (h *AuthHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := decodeJSON(r, &reg); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if result := h.validator.ValidateRegistration(reg); !result.IsValid {
		writeError(w, h.logger, result.Err())
		return
	}
	if result := h.validator.ValidateStruct(reg); !result.IsValid {
		writeError(w, h.logger, result.Err())
		return
	}

	user, err := h.users.Register(reg.Email, reg.Name, reg.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info().Str("user", user.ID).Msg("Account registered")
	h.respondWithToken(w, http.StatusCreated, user)
}

// LoginHandler exchanges credentials for a token
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if result := h.validator.ValidateCredentials(creds); !result.IsValid {
		writeError(w, h.logger, result.Err())
		return
	}

	user, err := h.users.Authenticate(creds.Email, creds.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

// MeHandler returns the profile of the token's user
func (h *AuthHandlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}
	user, found := h.users.Get(uid)
	if !found {
		writeError(w, h.logger, errors.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
