// Package testserver starts a fully wired genoroot HTTP server backed by an
// in-memory sqlite database for functional tests.
package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/genoroot/internal/domain/activity"
	"github.com/rpggio/genoroot/internal/domain/family"
	"github.com/rpggio/genoroot/internal/localstore"
	"github.com/rpggio/genoroot/internal/mcp"
	"github.com/rpggio/genoroot/internal/sqlite"
	"github.com/rpggio/genoroot/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Token  string
	Family *family.Service
}

// RPCResponse is a decoded JSON-RPC response with the result left raw.
type RPCResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *transport.Error `json:"error,omitempty"`
	ID      any              `json:"id,omitempty"`
}

func New(t *testing.T, token string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	repo := localstore.New(sqlite.NewKVStore(db), nil)
	familySvc := family.NewService(repo, repo, nil)
	activitySvc := activity.NewService(familySvc, nil)
	handler := mcp.NewHandler(familySvc, activitySvc)

	mcpServer := mcp.NewServer(mcp.Config{Handler: handler})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	server := httptest.NewServer(transport.NewServer(transport.Options{
		Handler: handler,
		MCP:     mcpHandler,
		Auth:    transport.AuthMiddleware(transport.StaticToken(token)),
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server: server,
		DB:     db,
		Token:  token,
		Family: familySvc,
	}
}

// RPC posts one JSON-RPC request to /rpc with the server's bearer token.
func (ts *TestServer) RPC(t *testing.T, method string, params any) RPCResponse {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// Call is RPC for calls expected to succeed; the result is decoded into out.
func (ts *TestServer) Call(t *testing.T, method string, params any, out any) {
	t.Helper()
	resp := ts.RPC(t, method, params)
	require.Nil(t, resp.Error, "%s failed: %+v", method, resp.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Result, out))
	}
}

// MCPClient returns an HTTP client that sends the server's bearer token.
func (ts *TestServer) MCPClient() *http.Client {
	return &http.Client{Transport: bearerTransport{token: ts.Token, base: http.DefaultTransport}}
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}
