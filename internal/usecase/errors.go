package usecase

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternal       = errors.New("internal error")
	ErrSeekerNotFound = errors.New("seeker profile not found")
	ErrInvalidProfile = errors.New("invalid seeker profile")
	ErrInvalidFilter  = errors.New("invalid filter expression")
)
