package error

import "errors"

var (
	ErrMissingAPIKey    = errors.New("chat API key is not configured")
	ErrUnknownBackend   = errors.New("unknown chat backend")
	ErrNoContent        = errors.New("no response content in API response")
	ErrUnknownMethod    = errors.New("unknown method")
	ErrWrongArity       = errors.New("wrong number of arguments")
	ErrInvalidArgument  = errors.New("argument must be a string")
	ErrUnknownTransport = errors.New("unknown rpc transport")
)
