package services

import "errors"

// Errors returned by the services. Handlers map each of them to one HTTP status.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidProfile     = errors.New("invalid profile value")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("not authorized to update this profile")
	ErrNotFound           = errors.New("not found")
)
