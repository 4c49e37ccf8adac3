package family_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/rpggio/genoroot/internal/domain/family"
	"github.com/rpggio/genoroot/internal/kv"
	"github.com/rpggio/genoroot/internal/localstore"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store *kv.Memory
	repo  *localstore.Repository
	svc   *family.Service
}

// newFixture wires a service over an in-memory store with sequential ids
// ("id1", "id2", ...) and a fixed clock.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := kv.NewMemory()
	repo := localstore.New(store, nil)
	seq := 0
	svc := family.NewService(repo, repo, nil,
		family.WithClock(func() time.Time { return fixedNow }),
		family.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id%d", seq)
		}),
	)
	return &fixture{store: store, repo: repo, svc: svc}
}

func strPtr(s string) *string { return &s }
