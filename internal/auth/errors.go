package auth

import "errors"

var (
	ErrTokenMissing             = errors.New("token missing")
	ErrTokenInvalid             = errors.New("token invalid")
	ErrTokenInvalidClaims       = errors.New("token has invalid claims")
	ErrTokenUnexpectedSignature = errors.New("unexpected token signing method")
)
