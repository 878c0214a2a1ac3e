package domain

import "errors"

// Failure categories surfaced by the generation pipelines. Callers match them
// with errors.Is; components wrap them together with the underlying cause.
var (
	ErrNotFound           = errors.New("not found")
	ErrMalformedInput     = errors.New("malformed input")
	ErrBackendUnavailable = errors.New("generative backend unavailable")
	ErrBackendResponse    = errors.New("generative backend returned a malformed payload")
	ErrResponseParse      = errors.New("model response could not be parsed")
	ErrDecode             = errors.New("generated payload could not be decoded")
	ErrPersistence        = errors.New("artifact persistence failed")
	ErrDispatch           = errors.New("event dispatch failed")
)
