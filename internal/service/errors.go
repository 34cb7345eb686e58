package service

import "errors"

var (
	ErrVerificationFailed = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("could not validate user")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("user already exists")

	// ErrAccountInactive is always wrapped together with ErrVerificationFailed
	// so callers answering the client cannot tell it apart from bad credentials.
	ErrAccountInactive = errors.New("account is inactive")
)
