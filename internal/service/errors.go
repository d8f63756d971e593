package service

import "errors"

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrEmptyContent      = errors.New("message content is empty")
)
