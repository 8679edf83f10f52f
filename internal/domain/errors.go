package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrAnimeNotFound   = errors.New("anime not found")
	ErrInvalidAction   = errors.New("invalid action")
)
