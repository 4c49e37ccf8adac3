package testserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ServesHealthAndRPC(t *testing.T) {
	ts := New(t, "token")

	resp, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var trees []map[string]any
	ts.Call(t, "list_trees", nil, &trees)
	require.Empty(t, trees)
}
