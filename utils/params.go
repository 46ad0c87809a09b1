package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParamError represents an invalid path or query parameter
type ParamError struct {
	Code    string
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

// ParseIDParam parses a positive numeric path parameter such as :id
func ParseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &ParamError{
			Code:    "INVALID_ID",
			Message: fmt.Sprintf("%s must be a positive integer", name),
		}
	}
	return uint(id), nil
}

// QueryInt parses an optional integer query parameter. Malformed values
// fall back to the default; callers clamp the result themselves.
func QueryInt(c *gin.Context, name string, defaultValue int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

// QueryUint parses an optional positive id query parameter; 0 means absent
func QueryUint(c *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, &ParamError{
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("%s must be a positive integer", name),
		}
	}
	return uint(n), nil
}

// QueryBool parses an optional boolean query parameter; nil means absent
func QueryBool(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &ParamError{
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("%s must be true or false", name),
		}
	}
	return &b, nil
}
