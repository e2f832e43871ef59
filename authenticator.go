package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Auther is the stateless orchestrator for registration, login, and email
// validation. All mutable state lives behind UserStore; instances are safe
// for concurrent use.
type Auther struct {
	store        UserStore
	tokenService TokenService
	mailer       Mailer
	baseURL      string
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store UserStore, mailer Mailer, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		tokenService: tokenService,
		mailer:       mailer,
		baseURL:      opts.GetWebServiceURL(),
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the default token service, mainly for tests
// that need deterministic expiry.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// AuthResult pairs the redacted user view with a freshly issued session
// token.
type AuthResult struct {
	User  *PublicUser `json:"user"`
	Token string      `json:"token"`
}

// Register creates a new identity record, issues its first session token,
// and dispatches the email validation link.
func (s *Auther) Register(ctx context.Context, payload RegisterUserPayload) (*AuthResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	email := NormalizeEmail(payload.Email)

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsRecordNotFound(err) {
		s.logger.Error("Register failed to check existing user", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing user")
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		s.logger.Error("Register failed to hash password", "error", err)
		return nil, err
	}

	user := &User{
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Email:        email,
		PasswordHash: hash,
	}

	// The unique email column is the arbiter under concurrent registration;
	// the lookup above only catches the common case early.
	user, err = s.store.Create(ctx, user)
	if err != nil {
		s.logger.Error("Register failed to create user", "error", err, "email", email)
		return nil, goerrors.Wrap(err, ErrEmailTaken.Category, ErrEmailTaken.Message).
			WithTextCode(ErrEmailTaken.TextCode)
	}

	token, err := s.tokenService.IssueSession(user.Identity())
	if err != nil {
		s.logger.Error("Register failed to issue session token", "error", err)
		return nil, err
	}

	if err := s.sendEmailValidationLink(ctx, user.Email); err != nil {
		// The user record stays; there is no compensating rollback here.
		s.logger.Error("Register failed to dispatch verification email", "error", err, "email", user.Email)
		return nil, err
	}

	return &AuthResult{
		User:  user.Public(),
		Token: token,
	}, nil
}

// Login verifies the submitted credentials and issues a session token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Auther) Login(ctx context.Context, payload LoginUserPayload) (*AuthResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	user, err := s.store.GetByEmail(ctx, NormalizeEmail(payload.Email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Debug("Login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login failed to retrieve user", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(payload.Password, user.PasswordHash); err != nil {
		s.logger.Debug("Login password mismatch", "user_id", user.ID.String())
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.IssueSession(user.Identity())
	if err != nil {
		s.logger.Error("Login failed to issue session token", "error", err)
		return nil, err
	}

	return &AuthResult{
		User:  user.Public(),
		Token: token,
	}, nil
}

// ValidateEmail consumes a verification token and flips the user's verified
// flag. The transition is monotonic and replaying a live token is a no-op
// success.
func (s *Auther) ValidateEmail(ctx context.Context, raw string) error {
	claims, err := s.tokenService.ValidateVerification(raw)
	if err != nil {
		// every token failure reports the same way to the caller
		s.logger.Debug("ValidateEmail token rejected", "error", err)
		return ErrInvalidVerificationToken
	}

	if claims.Email == "" {
		// we only ever mint verification tokens with an email claim, so a
		// verified token without one is a server-side invariant violation
		s.logger.Error("ValidateEmail token verified but carries no email claim")
		return goerrors.New("verification token missing email claim", goerrors.CategoryInternal)
	}

	if _, err := s.store.GetByEmail(ctx, claims.Email); err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Error("ValidateEmail token references unknown user", "email", claims.Email)
			return goerrors.New("verification token references unknown user", goerrors.CategoryInternal)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during email validation")
	}

	if _, err := s.store.MarkEmailValidated(ctx, claims.Email); err != nil {
		s.logger.Error("ValidateEmail failed to persist transition", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email as validated")
	}

	return nil
}

// SessionFromToken decodes and verifies a raw session token
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.ValidateSession(raw)
	if err != nil {
		s.logger.Debug("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	return sessionFromClaims(claims), nil
}

// UserFromSession resolves the session's uid against the directory. A stale
// uid surfaces as ErrIdentityNotFound.
func (s *Auther) UserFromSession(ctx context.Context, session Session) (*PublicUser, error) {
	user, err := s.store.GetByID(ctx, session.GetUserID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		s.logger.Error("UserFromSession lookup failed", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve session user")
	}

	return user.Public(), nil
}

func (s *Auther) sendEmailValidationLink(ctx context.Context, email string) error {
	token, err := s.tokenService.IssueVerification(email, 0)
	if err != nil {
		return err
	}

	msg := buildVerificationMessage(s.baseURL, email, token)

	if err := s.mailer.Send(ctx, msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send verification email")
	}

	return nil
}
