package email

import "errors"

var (
	ErrFailedToSendEmail = errors.New("failed to send email")
	ErrInvalidConfig     = errors.New("invalid email backend configuration")
	ErrUnknownBackend    = errors.New("unknown email backend")
	ErrBackendRegistered = errors.New("email backend already registered")
	ErrInvalidBackend    = errors.New("email backend requires a name and a factory")
)
