package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures the engine reports to callers
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindLimitExceeded ErrorKind = "limit_exceeded"
	KindInvalidState  ErrorKind = "invalid_state"
)

// ServiceError is a user-correctable failure with a stable code and message.
// Count and Limit are only set for KindLimitExceeded.
type ServiceError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Count   int
	Limit   int
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewValidationError reports malformed or missing input
func NewValidationError(message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message}
}

// NewNotFoundError reports a missing or inactive referenced record
func NewNotFoundError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Code: code, Message: message}
}

// NewLimitExceededError reports that the daily meal cap is reached
func NewLimitExceededError(count, limit int) *ServiceError {
	return &ServiceError{
		Kind:    KindLimitExceeded,
		Code:    "DAILY_LIMIT_EXCEEDED",
		Message: fmt.Sprintf("Daily meal limit reached (%d/%d)", count, limit),
		Count:   count,
		Limit:   limit,
	}
}

// ErrAlreadyProcessed is returned for any transition attempted on a non-pending order
var ErrAlreadyProcessed = &ServiceError{
	Kind:    KindInvalidState,
	Code:    "ORDER_ALREADY_PROCESSED",
	Message: "Order has already been processed",
}

// Not-found errors shared by several services
var (
	ErrFoodItemNotFound = NewNotFoundError("FOOD_ITEM_NOT_FOUND", "Food item not found or not available today")
	ErrCustomerNotFound = NewNotFoundError("CUSTOMER_NOT_FOUND", "Customer not found or inactive")
	ErrOrderNotFound    = NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
)

// AsServiceError unwraps err into a *ServiceError if it is one
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a ServiceError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	se, ok := AsServiceError(err)
	return ok && se.Kind == kind
}
