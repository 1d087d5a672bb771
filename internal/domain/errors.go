package domain

import "errors"

// Backend errors
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a sibling with the same name already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrValidation indicates the backend rejected the request payload
	ErrValidation = errors.New("validation failed")

	// ErrRemote indicates a transient backend failure (network or 5xx)
	ErrRemote = errors.New("remote failure")

	// ErrUnauthorized indicates a missing or expired token
	ErrUnauthorized = errors.New("unauthorized")
)

// Explorer errors
var (
	// ErrPreviewUnavailable indicates neither a signed URL nor a blob
	// fetch could produce a preview source
	ErrPreviewUnavailable = errors.New("preview unavailable")

	// ErrBatchAborted indicates an upload batch stopped at the first
	// failing file under the abort-on-failure policy
	ErrBatchAborted = errors.New("upload batch aborted")

	// ErrEmptyBatch indicates an upload was requested with no files
	ErrEmptyBatch = errors.New("upload batch is empty")
)

// Config errors
var (
	// ErrConfigNotFound indicates no config file could be located
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates the config file is malformed
	ErrConfigInvalid = errors.New("invalid config")
)
