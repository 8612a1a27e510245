package models

import "errors"

var (
	ErrNotFound         = errors.New("file not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrIngest           = errors.New("upload ingestion failed")
	ErrInvalidConfig    = errors.New("invalid config")
	ErrNotifyFailed     = errors.New("notebook notification failed")
)
