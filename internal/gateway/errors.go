package gateway

import "errors"

var (
	// ErrNotInitialized signals a startup-ordering bug: a collaborator
	// asked for the gateway before Initialize ran.
	ErrNotInitialized = errors.New("gateway not initialized")

	ErrAlreadyInitialized = errors.New("gateway already initialized")

	// ErrHandshakeExpected is returned when the first frame of a
	// connection is anything other than the auth handshake.
	ErrHandshakeExpected = errors.New("auth handshake expected")
)
