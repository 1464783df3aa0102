package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed input; no write is attempted.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a referential-integrity violation.
	ErrConflict = errors.New("conflict")
	// ErrForbidden indicates the principal lacks a required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates the principal is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage converts an error into a message that may be shown to the
// user. Anything outside the known taxonomy collapses into a generic failure
// so raw store errors never reach the UI.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "Data yang dikirim tidak valid"
	case errors.Is(err, ErrConflict):
		return "Data masih digunakan atau sudah ada"
	case errors.Is(err, ErrNotFound):
		return "Data tidak ditemukan"
	case errors.Is(err, ErrForbidden):
		return "Anda tidak memiliki akses"
	default:
		return "Terjadi kesalahan, silakan coba lagi"
	}
}
