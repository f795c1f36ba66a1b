package impl

import "errors"

var (
	ErrDeviceNameLength = errors.New("device name too short")
	ErrPasswordLength   = errors.New("password too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyCredential  = errors.New("empty credential(s)")
	ErrMissingRefresh   = errors.New("missing refresh token")
	ErrNothingToUpdate  = errors.New("no config fields to update")
)
