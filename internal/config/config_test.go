package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func Test_Load_Valid(t *testing.T) {
	path := writeTempConfig(t, `
protocol: APB
register_map_path: regs.yaml
register_map_format: yaml
frame_source_path: trace.jsonl
output_format: csv
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "APB", cfg.Protocol)
	assert.Equal(t, "csv", cfg.OutputFormat)
}

func Test_Load_UnknownProtocol(t *testing.T) {
	path := writeTempConfig(t, `
protocol: WISHBONE
register_map_path: regs.yaml
register_map_format: yaml
frame_source_path: trace.jsonl
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WISHBONE")
}

func Test_Load_MissingRegisterMapPath(t *testing.T) {
	path := writeTempConfig(t, `
protocol: AHB
register_map_format: yaml
frame_source_path: trace.jsonl
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register_map_path")
}
