package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// JSON-RPC 2.0 error codes used by /rpc.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	// CodeApplication carries store errors; data.code names the error.
	CodeApplication = -32000
)

var (
	// ErrParse is returned by ParseRequest when the body is not JSON.
	ErrParse = errors.New("parse error")
	// ErrInvalidRequest is returned by ParseRequest for well-formed JSON that
	// is not a JSON-RPC 2.0 call.
	ErrInvalidRequest = errors.New("invalid request")
)

// Request is a JSON-RPC 2.0 call naming a store method.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response is a JSON-RPC 2.0 reply.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error is a JSON-RPC 2.0 error object. For CodeApplication, Data holds
// code, and optionally details and recovery_hint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ParseRequest decodes one call. Undecodable bodies fail with ErrParse; a
// decoded call without version 2.0 or a method fails with ErrInvalidRequest
// and is still returned so its id can be echoed.
func ParseRequest(body io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if req.JSONRPC != "2.0" {
		return req, fmt.Errorf("%w: jsonrpc must be \"2.0\"", ErrInvalidRequest)
	}
	if req.Method == "" {
		return req, fmt.Errorf("%w: missing method", ErrInvalidRequest)
	}
	return req, nil
}

// parseErrorCode maps a ParseRequest failure onto its JSON-RPC code.
func parseErrorCode(err error) int {
	if errors.Is(err, ErrParse) {
		return CodeParseError
	}
	return CodeInvalidRequest
}

// rpcError maps a handler error onto a JSON-RPC error object.
func rpcError(err error) (int, string, any) {
	var apiErr apiError
	if !errors.As(err, &apiErr) {
		return CodeInternal, err.Error(), nil
	}

	code := CodeApplication
	switch apiErr.CodeValue() {
	case "UNKNOWN_METHOD":
		code = CodeMethodNotFound
	case "INVALID_PARAMS":
		code = CodeInvalidParams
	}
	data := map[string]any{"code": apiErr.CodeValue()}
	if details := apiErr.DetailsValue(); details != nil {
		data["details"] = details
	}
	if hint := apiErr.RecoveryHintValue(); hint != "" {
		data["recovery_hint"] = hint
	}
	return code, apiErr.MessageValue(), data
}

// WriteResult writes a JSON-RPC success response.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeJSON(w, http.StatusOK, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

// WriteError writes a JSON-RPC error response.
func WriteError(w http.ResponseWriter, id any, code int, message string, data any) {
	writeJSON(w, http.StatusOK, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
