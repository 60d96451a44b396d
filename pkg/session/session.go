package session

import (
	"context"
	stderrors "errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/models"
	"cheatsheets/pkg/remote"
)

// AuthAPI is the part of the remote client used for signing in
type AuthAPI interface {
	Register(ctx context.Context, reg models.Registration) (models.AuthResponse, error)
	Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error)
	Profile(ctx context.Context) (models.User, error)
}

var _ AuthAPI = (*remote.Client)(nil)

// Session signs a user in and out against the catalog API
type Session struct {
	api       AuthAPI
	vault     *Vault
	validator *errors.Validator
	logger    zerolog.Logger
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates a session over vault. The remote client passed as api should
// use the same vault as its token source.
func New(api AuthAPI, vault *Vault, opts ...Option) *Session {
	s := &Session{
		api:       api,
		vault:     vault,
		validator: errors.NewValidator(),
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "session").Logger()
	return s
}

// Init checks a saved token against the API. A token the API rejects is
// cleared. Network and server failures keep it and are returned.
func (s *Session) Init(ctx context.Context) error {
	if s.vault.Token() == "" {
		return nil
	}

	user, err := s.api.Profile(ctx)
	if err != nil {
		if remote.IsRecoverable(err) {
			return wrapRemote(err, "PROFILE_FAILED", "failed to load profile", "Unable to reach the server")
		}
		s.logger.Info().Err(err).Msg("Saved token rejected, signing out")
		s.vault.Clear()
		return nil
	}

	s.vault.SetUser(user)
	return nil
}

// Login signs in with email and password
func (s *Session) Login(ctx context.Context, creds models.Credentials) (models.User, error) {
	if result := s.validator.ValidateCredentials(creds); !result.IsValid {
		return models.User{}, result.Err()
	}

	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		appErr := wrapRemote(err, "LOGIN_FAILED", "login failed", "Login failed. Please try again.")
		if remote.IsUnauthorized(err) {
			appErr = errors.ErrInvalidCredentials.WithCause(err).WithUserMessage(appErr.GetUserMessage())
		}
		appErr.Log(s.logger)
		return models.User{}, appErr
	}

	s.vault.Save(resp.AccessToken, resp.User)
	s.logger.Info().Str("user", resp.User.ID).Msg("Signed in")
	return resp.User, nil
}

// Register creates an account and signs in with it
func (s *Session) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	if result := s.validator.ValidateRegistration(reg); !result.IsValid {
		return models.User{}, result.Err()
	}

	resp, err := s.api.Register(ctx, reg)
	if err != nil {
		appErr := wrapRemote(err, "REGISTER_FAILED", "registration failed", "Registration failed. Please try again.")
		appErr.Log(s.logger)
		return models.User{}, appErr
	}

	s.vault.Save(resp.AccessToken, resp.User)
	s.logger.Info().Str("user", resp.User.ID).Msg("Registered")
	return resp.User, nil
}

// Logout forgets the user and the token
func (s *Session) Logout() {
	s.vault.Clear()
}

// CurrentUser returns the signed-in user
func (s *Session) CurrentUser() (models.User, bool) {
	if s.vault.Token() == "" {
		return models.User{}, false
	}
	return s.vault.User()
}

// IsAuthenticated reports whether both a user and a token are held
func (s *Session) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}

// wrapRemote prefers the server's own message and falls back to fallback
// when the request never got an answer
func wrapRemote(err error, code, message, fallback string) *errors.AppError {
	userMessage := fallback
	var apiErr *remote.APIError
	if stderrors.As(err, &apiErr) && apiErr.StatusCode > 0 && apiErr.Message != "" {
		userMessage = apiErr.Message
	}
	appErr := errors.Wrap(err, errors.ErrTypeRemote, code, message).WithUserMessage(userMessage)
	if remote.IsRecoverable(err) {
		appErr = appErr.WithRetryable(true)
	}
	return appErr
}
