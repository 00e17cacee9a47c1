package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnavailable        = errors.New("book is not available")
	ErrNotForSale         = errors.New("book is not for sale")
	ErrAssetMissing       = errors.New("book pdf is not attached")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrAmountMismatch     = errors.New("amount mismatch")
	ErrForbidden          = errors.New("forbidden")
	ErrExpired            = errors.New("expired")
)
