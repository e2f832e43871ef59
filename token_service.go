package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenTTL is the process-wide token lifetime used when the
// configuration does not override it.
const DefaultTokenTTL = 2 * time.Hour

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	logger     Logger
}

// NewTokenService creates a new TokenService instance. The signing key and
// TTL are fixed for the life of the service.
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, logger Logger) TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		logger:     logger,
	}
}

// IssueSession creates a signed session token carrying the identity's id
func (ts *TokenServiceImpl) IssueSession(identity Identity) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity is required", goerrors.CategoryBadInput)
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		UID:      identity.ID(),
		UserRole: identity.Role(),
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.sign(claims)
}

// IssueVerification creates a signed verification token carrying the email
// the link was addressed to. A non-positive ttl uses the service default.
func (ts *TokenServiceImpl) IssueVerification(email string, ttl time.Duration) (string, error) {
	if email == "" {
		return "", goerrors.New("email is required", goerrors.CategoryBadInput)
	}

	if ttl <= 0 {
		ttl = ts.ttl
	}

	now := time.Now()
	claims := &VerificationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.sign(claims)
}

// ValidateSession parses and validates a session token string
func (ts *TokenServiceImpl) ValidateSession(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := ts.parseInto(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateVerification parses and validates a verification token string
func (ts *TokenServiceImpl) ValidateVerification(raw string) (*VerificationClaims, error) {
	claims := &VerificationClaims{}
	if err := ts.parseInto(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (ts *TokenServiceImpl) sign(claims jwt.Claims) (string, error) {
	if len(ts.signingKey) == 0 {
		return "", goerrors.New("token service is missing its signing key", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

func (ts *TokenServiceImpl) parseInto(raw string, claims jwt.Claims) error {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !token.Valid {
		return ErrTokenMalformed
	}

	return nil
}
