package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrEmptySecret         = errors.New("secret cannot be empty")
	ErrUnknownService      = errors.New("unknown service")
	ErrUnknownOutputFormat = errors.New("unknown output format")
	ErrServiceNotFound     = errors.New("service is not configured")
)

// Required argument errors.
var (
	ErrEnvironmentRequired = errors.New("--environment flag is required")
	ErrCollectionRequired  = errors.New("--collection flag is required")
	ErrAccountRequired     = errors.New("--account flag is required")
	ErrGraphRequired       = errors.New("--graph flag is required")
	ErrTargetRequired      = errors.New("--target or --model flag is required")
	ErrInputRequired       = errors.New("one of --text, --html or --url is required")
	ErrFeatureRequired     = errors.New("at least one --feature is required")
	ErrUnknownFeature      = errors.New("unknown feature")
	ErrBatchFailed         = errors.New("some documents were not added")
)
