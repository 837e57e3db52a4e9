package apperrors

import "errors"

var (
	ErrObjectNotFound         = errors.New("object not found")
	ErrDefinitionUnavailable  = errors.New("object has no definition text")
	ErrCreationClauseNotFound = errors.New("no creation clause found outside comments")
	ErrStoreWriteFailed       = errors.New("metadata store write failed")
	ErrUnsupportedStoreDriver = errors.New("unsupported store driver")
)
