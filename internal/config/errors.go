package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrInvalidLogLevel = goerr.New("invalid log level")
	ErrInvalidFormat   = goerr.New("invalid log format")
	ErrMissingName     = goerr.New("name is required")
	ErrDuplicateName   = goerr.New("duplicate relation source name")
	ErrInvalidRelation = goerr.New("invalid relation source")
)
