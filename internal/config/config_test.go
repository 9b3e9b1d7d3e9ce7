package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultClusterConfig(), cfg)
}

func TestLoadConfigParsesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
nodes:
  - name: node-1
    member: true
  - name: node-2
engine:
  mailboxSize: 512
  adminReplyTimeoutMS: 5000
metrics:
  enabled: true
  addr: 0.0.0.0:9100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Nodes, 2)
	require.Equal(t, "node-1", cfg.Nodes[0].Name)
	require.True(t, cfg.Nodes[0].Member)
	require.False(t, cfg.Nodes[1].Member)
	require.Equal(t, 512, cfg.Engine.MailboxSize)
	require.Equal(t, int64(5000), cfg.Engine.AdminReplyTimeoutMS)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, "0.0.0.0:9100", cfg.Metrics.Addr)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("nodes: [this is not valid"), 0o644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestStorageSaveLoadDelete(t *testing.T) {
	storage := NewStorageWithPath(t.TempDir())

	require.NoError(t, storage.Save("servicegroups", "sg-1", []byte("spec:\n  redundancyModel: 2N\n")))

	data, err := storage.Load("servicegroups", "sg-1")
	require.NoError(t, err)
	require.Contains(t, string(data), "2N")

	names, err := storage.List("servicegroups")
	require.NoError(t, err)
	require.Equal(t, []string{"sg-1"}, names)

	require.NoError(t, storage.Delete("servicegroups", "sg-1"))
	_, err = storage.Load("servicegroups", "sg-1")
	require.Error(t, err)
}

func TestStorageLoadMissingReturnsError(t *testing.T) {
	storage := NewStorageWithPath(t.TempDir())
	_, err := storage.Load("servicegroups", "does-not-exist")
	require.Error(t, err)
}

func TestStorageListEmptyDirectoryReturnsNoError(t *testing.T) {
	storage := NewStorageWithPath(t.TempDir())
	names, err := storage.List("servicegroups")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestStorageSanitizesUnsafeNames(t *testing.T) {
	storage := NewStorageWithPath(t.TempDir())
	require.NoError(t, storage.Save("serviceunits", "node/1:su", []byte("spec: {}\n")))

	names, err := storage.List("serviceunits")
	require.NoError(t, err)
	require.Equal(t, []string{"node_1_su"}, names)
}

func TestDefaultClusterConfig(t *testing.T) {
	cfg := DefaultClusterConfig()
	require.False(t, cfg.Metrics.Enabled)
	require.Equal(t, 1024, cfg.Engine.MailboxSize)
	require.Empty(t, cfg.Nodes)
}
