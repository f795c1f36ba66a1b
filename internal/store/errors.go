package store

import "gorm.io/gorm"

// Re-exported so callers don't import gorm just to branch on lookup misses.
// Requires gorm.Config{TranslateError: true} for ErrDuplicatedKey to fire
// uniformly across drivers.
var (
	ErrRecordNotFound = gorm.ErrRecordNotFound
	ErrDuplicatedKey  = gorm.ErrDuplicatedKey
)
