package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setting.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `{
		"log": {"level": "debug"},
		"nodes": [
			{"name": "a", "upload_bandwidth": "10mbps"},
			{"name": "b", "download_buffer": 1024}
		],
		"links": [
			{"a": "a", "b": "b", "latency": "10ms", "packet_loss": "5%"}
		]
	}`)

	require.NoError(t, Reload(path))
	require.Equal(t, "debug", GlobalCfg.Log.Level)
	require.Len(t, GlobalCfg.Nodes, 2)
	require.Len(t, GlobalCfg.Links, 1)
}

func TestLoadDefaultsMissingLogLevelToInfo(t *testing.T) {
	path := writeConfig(t, `{"nodes": [{"name": "a"}], "links": []}`)

	require.NoError(t, Reload(path))
	require.Equal(t, "info", GlobalCfg.Log.Level)
}

func TestLoadRejectsDuplicateNodeNames(t *testing.T) {
	path := writeConfig(t, `{"nodes": [{"name": "a"}, {"name": "a"}], "links": []}`)

	err := Reload(path)
	require.Error(t, err)
}

func TestLoadRejectsLinkToUnknownNode(t *testing.T) {
	path := writeConfig(t, `{"nodes": [{"name": "a"}], "links": [{"a": "a", "b": "ghost"}]}`)

	err := Reload(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	err := Reload(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.Error(t, err)
}
