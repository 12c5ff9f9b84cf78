package emu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[cdrom]
type = "base"

[log]
modules = ["cdrom", "scsi"]
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, hwdefs.CdRomBase, cfg.CdRom.Type)
	require.Equal(t, []string{"cdrom", "scsi"}, cfg.Log.Modules)
	require.Equal(t, DefaultConfig().RPC, cfg.RPC)

	mask, err := cfg.Log.Mask()
	require.NoError(t, err)
	require.Equal(t, log.ModCdRom.Mask()|log.ModScsi.Mask(), mask)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"type":   "[cdrom]\ntype = \"turbo\"\n",
		"module": "[log]\nmodules = [\"gpu\"]\n",
		"syntax": "[cdrom\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			require.Equal(t, DefaultConfig(), LoadConfigOrDefault(path))
		})
	}

	require.Equal(t, DefaultConfig(), LoadConfigOrDefault(filepath.Join(dir, "missing.toml")))
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.CdRom.Type = hwdefs.CdRomArcade
	cfg.Log.Modules = []string{"all"}

	require.NoError(t, SaveConfig(path, cfg))
	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(buf), `type = "arcade"`)

	got, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}
