// Package env reads the build settings that come from the process
// environment.
package env

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goplus/buildc/platform"
	"github.com/goplus/buildc/toolchain"
)

// Environment variables consulted by Lookup.
const (
	VarCC        = "CC"
	VarToolchain = "BUILDC_TOOLCHAIN"
	VarTarget    = "BUILDC_TARGET"
	VarTimeout   = "BUILDC_TIMEOUT"
)

// Settings are the environment overrides of a build run. Zero fields are
// unset.
type Settings struct {
	CC      string
	Kind    toolchain.Kind
	Target  *platform.Signals
	Timeout time.Duration
}

// Lookup reads Settings from the environment. A variable that is set but
// malformed is an error.
func Lookup() (Settings, error) {
	var s Settings
	s.CC = strings.TrimSpace(os.Getenv(VarCC))
	if v := os.Getenv(VarToolchain); v != "" {
		kind, err := toolchain.ParseKind(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", VarToolchain, err)
		}
		s.Kind = kind
	}
	if v := os.Getenv(VarTarget); v != "" {
		sig, err := platform.ParseTriple(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", VarTarget, err)
		}
		s.Target = &sig
	}
	if v := os.Getenv(VarTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", VarTimeout, err)
		}
		if d < 0 {
			return Settings{}, fmt.Errorf("%s: negative timeout %v", VarTimeout, d)
		}
		s.Timeout = d
	}
	return s, nil
}
