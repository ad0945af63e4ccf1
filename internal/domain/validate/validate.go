// Package validate holds the field-level validation error types shared by
// the domain services. Services collect every client-fixable problem in a
// request into one Errors value instead of stopping at the first failure.
package validate

import (
	"fmt"
	"strings"
)

// FieldError is a single field failure. The JSON keys match the API
// contract for 422 responses.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// Errors batches every field failure found in a request.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Add(param, msg string) {
	e.Fields = append(e.Fields, FieldError{Param: param, Msg: msg})
}

func (e *Errors) Empty() bool {
	return len(e.Fields) == 0
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Param, f.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
