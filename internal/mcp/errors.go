package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/genoroot/internal/domain/family"
)

// Error codes that are not tied to a domain error.
const (
	CodeUnknownMethod = "UNKNOWN_METHOD"
	CodeInvalidParams = "INVALID_PARAMS"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// with no client-facing meaning.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, family.ErrTreeNotFound):
		return &APIError{Code: "TREE_NOT_FOUND", Message: "tree not found", RecoveryHint: "Call list_trees for valid ids"}
	case errors.Is(err, family.ErrMemberNotFound):
		return &APIError{Code: "MEMBER_NOT_FOUND", Message: "member not found", RecoveryHint: "Call list_members or search_members for valid ids"}
	case errors.Is(err, family.ErrInvalidRelationship):
		return &APIError{Code: "INVALID_RELATIONSHIP", Message: err.Error(), RecoveryHint: "Use parent, child, spouse or sibling"}
	case errors.Is(err, family.ErrTreeExists):
		return &APIError{Code: "TREE_EXISTS", Message: err.Error(), RecoveryHint: "Delete the existing tree or edit the bundle's tree id"}
	case errors.Is(err, family.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return &APIError{Code: CodeInvalidParams, Message: err.Error(), RecoveryHint: "Check argument names and types against the tool schema"}
	default:
		return nil
	}
}

func unknownMethod(method string) *APIError {
	return &APIError{Code: CodeUnknownMethod, Message: fmt.Sprintf("unknown method: %s", method), RecoveryHint: "Call tools/list for available tools"}
}
