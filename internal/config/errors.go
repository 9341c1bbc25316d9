package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTopicArn   = errors.New("invalid SNS topic ARN")
	ErrInvalidValue      = errors.New("invalid configuration value")
	ErrMissingValue      = errors.New("required configuration value is missing")
	ErrPlaceholderValue  = errors.New("configuration value is still a placeholder")
	ErrUnknownPolicyMode = errors.New("unknown policy mode")
)

func ErrorInvalidTopicArn(value string, cause error) error {
	return fmt.Errorf("%w: value=%s cause=%v", ErrInvalidTopicArn, value, cause)
}

func ErrorInvalidValue(name string, cause error) error {
	return fmt.Errorf("%w: name=%s cause=%v", ErrInvalidValue, name, cause)
}

func ErrorMissingValue(name string) error {
	return fmt.Errorf("%w: name=%s", ErrMissingValue, name)
}

func ErrorPlaceholderValue(name, value string) error {
	return fmt.Errorf("%w: name=%s value=%q", ErrPlaceholderValue, name, value)
}

func ErrorUnknownPolicyMode(mode string) error {
	return fmt.Errorf("%w: mode=%s", ErrUnknownPolicyMode, mode)
}
