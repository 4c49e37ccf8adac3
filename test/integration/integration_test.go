package integration_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/genoroot/internal/domain/family"
	"github.com/rpggio/genoroot/internal/filestore"
	"github.com/rpggio/genoroot/internal/localstore"
	"github.com/rpggio/genoroot/internal/sqlite"
	"github.com/rpggio/genoroot/internal/testserver"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newFileService(t *testing.T, dir string) (*family.Service, *filestore.Store) {
	t.Helper()
	store, err := filestore.New(dir, nil)
	require.NoError(t, err)
	repo := localstore.New(store, nil)
	return family.NewService(repo, repo, nil), store
}

// Two services over one directory behave like two browser tabs sharing
// storage: each sees the other's writes and the last whole-collection write
// wins.
func TestIntegration_SharedFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	first, _ := newFileService(t, dir)
	second, _ := newFileService(t, dir)

	tree, err := first.CreateTree(ctx, family.CreateTreeRequest{Name: "Smiths"})
	require.NoError(t, err)

	seen, err := second.GetTree(ctx, tree.ID)
	require.NoError(t, err)
	require.Equal(t, "Smiths", seen.Name)

	name := "Smith family"
	_, err = second.UpdateTree(ctx, tree.ID, family.TreeUpdate{Name: &name})
	require.NoError(t, err)

	seen, err = first.GetTree(ctx, tree.ID)
	require.NoError(t, err)
	require.Equal(t, "Smith family", seen.Name)
}

func TestIntegration_WatchSeesOtherWriter(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	dir := t.TempDir()
	_, watched := newFileService(t, dir)
	writer, _ := newFileService(t, dir)

	var (
		mu   sync.Mutex
		keys = map[string]bool{}
	)
	done := make(chan error, 1)
	go func() {
		done <- watched.Watch(ctx, func(c filestore.Change) {
			mu.Lock()
			keys[c.Key] = true
			mu.Unlock()
		})
	}()

	tree, err := writer.CreateTree(context.Background(), family.CreateTreeRequest{Name: "Smiths"})
	require.NoError(t, err)

	// The watcher may start after the first write; keep writing until both
	// keys are reported.
	require.Eventually(t, func() bool {
		if _, err := writer.AddMember(context.Background(), tree.ID, family.AddMemberRequest{
			Input: family.MemberInput{FirstName: "Bob"},
		}); err != nil {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		return keys[localstore.TreesKey] && keys[localstore.MembersKey(tree.ID)]
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestIntegration_SQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "genoroot.db")

	open := func() (*family.Service, *sqlite.DB) {
		db, err := sqlite.Open(path)
		require.NoError(t, err)
		repo := localstore.New(sqlite.NewKVStore(db), nil)
		return family.NewService(repo, repo, nil), db
	}

	svc, db := open()
	tree, err := svc.CreateTree(ctx, family.CreateTreeRequest{
		Name: "Smiths",
		Root: family.MemberInput{FirstName: "Anna", LastName: "Smith", BirthDate: "1950-01-01"},
	})
	require.NoError(t, err)
	bundle, err := svc.ExportTree(ctx, tree.ID)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	svc, db = open()
	defer db.Close()
	again, err := svc.ExportTree(ctx, tree.ID)
	require.NoError(t, err)
	require.Equal(t, bundle, again)
}

func TestIntegration_MCPOverHTTP(t *testing.T) {
	ctx := context.Background()
	ts := testserver.New(t, "token")

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: ts.MCPClient(),
	}, nil)
	require.NoError(t, err)
	defer session.Close()

	initResult := session.InitializeResult()
	require.NotNil(t, initResult)
	require.Equal(t, "genoroot", initResult.ServerInfo.Name)

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "create_tree",
		Arguments: map[string]any{"name": "Over HTTP"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	var tree family.Tree
	require.NoError(t, json.Unmarshal([]byte(text.Text), &tree))

	stored, err := ts.Family.GetTree(ctx, tree.ID)
	require.NoError(t, err)
	require.Equal(t, "Over HTTP", stored.Name)
}
