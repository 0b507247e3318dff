package core

import "errors"

var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrNonceInvalid     = errors.New("nonce not valid or expired")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrBlobNotFound     = errors.New("blob not found")
)

// Kind classifies a protocol failure. The HTTP boundary maps each kind to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindChallenge
	KindSignature
	KindNotFound
	KindInactive
	KindConflict
	KindUnauthorized
	KindForbidden
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindChallenge:
		return "challenge"
	case KindSignature:
		return "signature"
	case KindNotFound:
		return "not_found"
	case KindInactive:
		return "inactive"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a typed protocol error. Message is safe to show to callers, Err is not.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError creates a typed error
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal for untyped errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
