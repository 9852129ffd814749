package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/projectdiscovery/bundler"
	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"
	"gopkg.in/yaml.v3"
)

func getUserHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return homeDir
}

func init() {
	defaultSurfacesCfg := filepath.Join(getUserHomeDir(), fmt.Sprintf(".config/bundler/surfaces_%v.yaml", version))
	// create default surfaces.yaml config if does not exist
	if fileutil.FileExists(defaultSurfacesCfg) {
		// if it exists use that data as default
		if bin, err := os.ReadFile(defaultSurfacesCfg); err == nil {
			var cfg bundler.Config
			if errx := yaml.Unmarshal(bin, &cfg); errx == nil && len(cfg.Surfaces) > 0 {
				bundler.DefaultConfig = cfg
				return
			}
		}
	}
	if err := os.MkdirAll(filepath.Dir(defaultSurfacesCfg), 0755); err != nil {
		gologger.Error().Msgf("failed to create config dir got: %v", err)
		return
	}
	if err := os.WriteFile(defaultSurfacesCfg, bundler.DefaultSurfacesBin, 0600); err != nil {
		gologger.Error().Msgf("failed to save default config to %v got: %v", defaultSurfacesCfg, err)
	}
}
