package integration_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func binaryPath(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"./bin/genoroot", "../../bin/genoroot"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("genoroot binary not found. Run 'go build -o bin/genoroot ./cmd/genoroot' first.")
	return ""
}

func stdioCommand(ctx context.Context, path string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, path, "serve")
	cmd.Env = append(os.Environ(),
		"GENOROOT_TRANSPORT=stdio",
		"GENOROOT_STORAGE_DRIVER=memory",
		"GENOROOT_LOG_LEVEL=debug",
	)
	return cmd
}

// TestStdioProtocolCompliance drives the real binary with the SDK client.
func TestStdioProtocolCompliance(t *testing.T) {
	path := binaryPath(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: stdioCommand(ctx, path)}, nil)
	require.NoError(t, err, "failed to connect to server")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "genoroot", initResult.ServerInfo.Name)
		require.NotEmpty(t, initResult.Instructions)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err)

		names := make(map[string]bool)
		for _, tool := range tools.Tools {
			names[tool.Name] = true
		}
		for _, name := range []string{"create_tree", "list_trees", "add_member", "add_relationship", "get_tree_statistics", "check_integrity"} {
			require.True(t, names[name], "missing tool: %s", name)
		}
	})

	t.Run("CreateThenList", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "create_tree",
			Arguments: map[string]any{"name": "Stdio Tree"},
		})
		require.NoError(t, err)
		require.False(t, result.IsError, "create_tree returned error: %v", result)

		result, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_trees"})
		require.NoError(t, err)
		require.False(t, result.IsError)

		text, ok := result.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok)
		var summaries []struct {
			Tree struct {
				Name string `json:"name"`
			} `json:"tree"`
		}
		require.NoError(t, json.Unmarshal([]byte(text.Text), &summaries))
		require.Len(t, summaries, 1)
		require.Equal(t, "Stdio Tree", summaries[0].Tree.Name)
	})
}

// TestStdioProtocol_StdoutHygiene checks that debug logging never reaches
// stdout, where only JSON-RPC messages may appear.
func TestStdioProtocol_StdoutHygiene(t *testing.T) {
	path := binaryPath(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := stdioCommand(ctx, path)
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	initReq := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}},"id":1}`
	_, err = stdin.Write([]byte(initReq + "\n"))
	require.NoError(t, err)

	var first map[string]any
	require.NoError(t, json.NewDecoder(stdout).Decode(&first), "first stdout message must be JSON")
	require.Equal(t, "2.0", first["jsonrpc"])

	stdin.Close()
	_ = cmd.Process.Kill()
	_ = cmd.Wait()
}
