package governance

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/smithy-go"
)

// Class is the failure taxonomy callers act on.
type Class int

const (
	ClassNone Class = iota
	ClassTransient
	ClassPermanent
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassPermanent:
		return "permanent"
	default:
		return "none"
	}
}

var (
	ErrTransient = errors.New("transient governance failure")
	ErrPermanent = errors.New("permanent governance failure")

	ErrAcceptingRequest  = errors.New("failed to accept subscription request")
	ErrAlreadyRejected   = errors.New("subscription request already rejected")
	ErrListingRequests   = errors.New("failed to list pending subscription requests")
	ErrMissingIdentifier = errors.New("subscription request has no identifier")
	ErrReadingRequest    = errors.New("failed to read subscription request")
	ErrUndecidedConflict = errors.New("subscription request conflict without a decision")
)

var (
	transientCodes = map[string]struct{}{
		"ThrottlingException":         {},
		"InternalServerException":     {},
		"ServiceUnavailableException": {},
		"RequestTimeout":              {},
		"RequestTimeoutException":     {},
	}

	permanentCodes = map[string]struct{}{
		"AccessDeniedException":         {},
		"ConflictException":             {},
		"ResourceNotFoundException":     {},
		"ServiceQuotaExceededException": {},
		"UnauthorizedException":         {},
		"ValidationException":           {},
	}
)

const conflictCode = "ConflictException"

// Classify reports whether err is worth retrying.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrTransient):
		return ClassTransient
	case errors.Is(err, ErrPermanent):
		return ClassPermanent
	case errors.Is(err, context.Canceled):
		return ClassPermanent
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTransient
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := transientCodes[apiErr.ErrorCode()]; ok {
			return ClassTransient
		}
		if _, ok := permanentCodes[apiErr.ErrorCode()]; ok {
			return ClassPermanent
		}
	}

	if retry.IsErrorThrottles(retry.DefaultThrottles).IsErrorThrottle(err) == aws.TrueTernary {
		return ClassTransient
	}
	if retry.IsErrorRetryables(retry.DefaultRetryables).IsErrorRetryable(err) == aws.TrueTernary {
		return ClassTransient
	}

	return ClassPermanent
}

func IsTransient(err error) bool {
	return Classify(err) == ClassTransient
}

func IsPermanent(err error) bool {
	return Classify(err) == ClassPermanent
}

func hasErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == code
	}
	return false
}

func isConflict(err error) bool {
	return hasErrorCode(err, conflictCode)
}

func classSentinel(cause error) error {
	if Classify(cause) == ClassTransient {
		return ErrTransient
	}
	return ErrPermanent
}

func ErrorAcceptingRequest(requestID string, cause error) error {
	return fmt.Errorf("%w: %w: request=%s cause=%w", ErrAcceptingRequest, classSentinel(cause), requestID, cause)
}

func ErrorAlreadyRejected(requestID string) error {
	return fmt.Errorf("%w: %w: request=%s", ErrAlreadyRejected, ErrPermanent, requestID)
}

func ErrorListingRequests(domainID, projectID string, cause error) error {
	return fmt.Errorf("%w: %w: domain=%s project=%s cause=%w",
		ErrListingRequests, classSentinel(cause), domainID, projectID, cause)
}

func ErrorMissingIdentifier() error {
	return fmt.Errorf("%w: %w", ErrMissingIdentifier, ErrPermanent)
}

func ErrorReadingRequest(requestID string, cause error) error {
	return fmt.Errorf("%w: %w: request=%s cause=%w", ErrReadingRequest, classSentinel(cause), requestID, cause)
}

func ErrorUndecidedConflict(requestID, status string, cause error) error {
	return fmt.Errorf("%w: %w: request=%s status=%s cause=%v", ErrUndecidedConflict, ErrPermanent, requestID, status, cause)
}
