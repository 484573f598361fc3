package frontend

import "errors"

var (
	ErrEnqueuerNil          = errors.New("frontend: enqueuer cannot be nil")
	ErrMissingContentType   = errors.New("missing content type")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidForm          = errors.New("invalid form data")
	ErrInvalidJSON          = errors.New("invalid JSON body")
	ErrRequestTooLarge      = errors.New("request body too large")
)
