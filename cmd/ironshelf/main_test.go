package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/services"
	"github.com/damacus/ironshelf/internal/services/memstore"
)

type memFactory struct{ store *memstore.Store }

func (f memFactory) NewClient(context.Context, services.Connection) (services.StoreClient, error) {
	return f.store, nil
}

func (f memFactory) NewAdminClient(services.Connection) (services.AdminClient, error) {
	return nil, errs.New(errs.KindConnectionFailed, "not a MinIO server")
}

// testEnv is a config file in a temp dir plus the store every command sees.
type testEnv struct {
	dir    string
	config string
	store  *memstore.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	content := `log:
  level: error
history:
  enabled: true
  path: ` + filepath.Join(dir, "history.db") + `
connection:
  endpoint: localhost:9000
  accessKey: ak
  secretKey: sk
`
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))
	return &testEnv{dir: dir, config: cfg, store: memstore.New()}
}

// run executes one CLI invocation and returns what it printed on stdout.
func (env *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(memFactory{env.store})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", env.config}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}
