package bundler

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

// DefaultSurfacesBin is the surface config shipped with bundler.
//
//go:embed surfaces.yaml
var DefaultSurfacesBin []byte

// DefaultConfig holds the surfaces of DefaultSurfacesBin.
var DefaultConfig Config

func init() {
	if err := yaml.Unmarshal(DefaultSurfacesBin, &DefaultConfig); err != nil {
		panic(err)
	}
}
