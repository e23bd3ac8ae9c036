package app

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyContent = errors.New("content must not be empty")
)
