package emu

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"

	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
)

type Config struct {
	CdRom CdRomConfig `toml:"cdrom"`
	Log   LogConfig   `toml:"log"`
	RPC   RPCConfig   `toml:"rpc"`
}

type CdRomConfig struct {
	Type hwdefs.CdRomType `toml:"type"`
}

type LogConfig struct {
	// Modules to enable debug logging for.
	Modules []string `toml:"modules"`
}

// Mask returns the mask of the configured log modules.
func (lc LogConfig) Mask() (log.ModuleMask, error) {
	var mask log.ModuleMask
	for _, name := range lc.Modules {
		if name == "all" {
			mask |= log.ModuleMaskAll
			continue
		}
		mod, ok := log.ModuleByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown log module %q", name)
		}
		mask |= mod.Mask()
	}
	return mask, nil
}

type RPCConfig struct {
	Port int `toml:"port"`
}

const DefaultFileMode = os.FileMode(0755)

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "pcecd")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

var defaultConfig = Config{
	CdRom: CdRomConfig{Type: hwdefs.CdRomSuper},
	RPC:   RPCConfig{Port: 7813},
}

func DefaultConfig() Config {
	return defaultConfig
}

const cfgFilename = "config.toml"

// ConfigPath returns path, or the default configuration file if empty.
func ConfigPath(path string) string {
	if path != "" {
		return path
	}
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfig loads the configuration file at path. Missing keys keep their
// default value.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return defaultConfig, fmt.Errorf("load config: %w", err)
	}
	if _, err := cfg.Log.Mask(); err != nil {
		return defaultConfig, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration file at path, or provides the
// default one.
func LoadConfigOrDefault(path string) Config {
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("using default config").Error("err", err).End()
		}
		return defaultConfig
	}
	return cfg
}

// SaveConfig writes cfg at path.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}
