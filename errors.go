package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// ErrEmailTaken is returned when a registration targets an email that is
// already in the directory.
var ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode("EMAIL_TAKEN")

// ErrInvalidCredentials covers both an unknown email and a wrong password.
// The two cases are logged differently but share one error so callers
// cannot tell them apart.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS")

// ErrTokenExpired is the validation failure for tokens past their expiry
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed covers bad signatures and undecodable tokens
var ErrTokenMalformed = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED")

// ErrInvalidVerificationToken is what ValidateEmail reports for any token
// failure, regardless of cause.
var ErrInvalidVerificationToken = goerrors.New("invalid verification token", goerrors.CategoryAuth).
	WithTextCode("INVALID_VERIFICATION_TOKEN")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrMismatchedHashAndPassword is returned when a password does not verify
// against a stored hash. Malformed hashes report the same way so the
// comparison never leaks why verification failed.
var ErrMismatchedHashAndPassword = goerrors.New("hashed password mismatch", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH")

// ErrNoEmptyString rejects empty secrets before they reach the hasher
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithTextCode("EMPTY_VALUE")

// IsConflict reports whether err is a duplicate-resource failure, such as
// registering an email that already exists.
func IsConflict(err error) bool {
	return hasCategory(err, goerrors.CategoryConflict)
}

// IsAuthFailure reports whether err is a credential or token rejection.
func IsAuthFailure(err error) bool {
	return hasCategory(err, goerrors.CategoryAuth)
}

// IsValidationFailure reports whether err was raised by payload validation.
func IsValidationFailure(err error) bool {
	return hasCategory(err, goerrors.CategoryValidation)
}

// IsInternalFailure reports whether err is an infrastructure or invariant
// failure that the caller cannot recover from by retrying the same call.
func IsInternalFailure(err error) bool {
	return hasCategory(err, goerrors.CategoryInternal)
}

func hasCategory(err error, category goerrors.Category) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}

	return richErr.Category == category
}
