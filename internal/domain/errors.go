package domain

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDeviceNotFound       = errors.New("device not found")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrUnknownPipelineType  = errors.New("unknown pipeline type")
	ErrUnknownLLMService    = errors.New("unknown llm service")
	ErrIDAllocationConflict = errors.New("device id allocation conflict")
)
