// Package project defines what a build run compiles.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goplus/buildc/toolchain"
	"github.com/pelletier/go-toml"
)

// DefaultFile is the project file looked up in the working directory.
const DefaultFile = "buildc.toml"

// Compiler compiles one source file, relative to the source root, into the
// executable output. It returns the compiler's exit status.
type Compiler interface {
	Compile(ctx context.Context, source, output string) (int, error)
}

// Project issues the compile requests of a build run, in order.
type Project interface {
	Build(ctx context.Context, c Compiler) error
}

// Func adapts a function to a Project.
type Func func(ctx context.Context, c Compiler) error

func (f Func) Build(ctx context.Context, c Compiler) error {
	return f(ctx, c)
}

// Empty compiles nothing.
var Empty Project = Func(func(context.Context, Compiler) error { return nil })

// -----------------------------------------------------------------------------

// Target is one [[target]] entry of a project file.
type Target struct {
	Source string `toml:"source"`
	Output string `toml:"output"`
}

// Flags overrides a compiler family's flag strings. Empty fields keep the
// defaults.
type Flags struct {
	Warn      string `toml:"warn"`
	Standard  string `toml:"standard"`
	Libraries string `toml:"libraries"`
	Includes  string `toml:"includes"`
}

// Config returns f as a toolchain.Config.
func (f Flags) Config() toolchain.Config {
	return toolchain.Config{
		Warn:      f.Warn,
		Standard:  f.Standard,
		Libraries: f.Libraries,
		Includes:  f.Includes,
	}
}

// File is the content of a project file.
type File struct {
	SourceDir   string   `toml:"source_dir"`
	BinaryDir   string   `toml:"binary_dir"`
	PerPlatform bool     `toml:"per_platform"`
	Targets     []Target `toml:"target"`
	GCC         Flags    `toml:"gcc"`
	MSVC        Flags    `toml:"msvc"`

	// Env is set in the environment of every compile, e.g. INCLUDE and LIB
	// for cl.
	Env map[string]string `toml:"env"`
}

// Load reads the project file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a project file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for k := range f.Env {
		if k == "" || strings.ContainsAny(k, "=\x00") {
			return nil, fmt.Errorf("env: invalid variable name %q", k)
		}
	}
	for i, t := range f.Targets {
		if t.Source == "" || t.Output == "" {
			return nil, fmt.Errorf("target #%d: source and output are required", i+1)
		}
	}
	return &f, nil
}

// Flags returns the flag overrides for a toolchain kind.
func (f *File) Flags(kind toolchain.Kind) toolchain.Config {
	if kind.IsMSVC() {
		return f.MSVC.Config()
	}
	return f.GCC.Config()
}

// Project returns a Project compiling every target of f in file order. It
// stops at the first failing compile.
func (f *File) Project() Project {
	targets := f.Targets
	return Func(func(ctx context.Context, c Compiler) error {
		for _, t := range targets {
			if _, err := c.Compile(ctx, t.Source, t.Output); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadOrEmpty loads the project file at path. A missing file yields an empty
// File so that a bare build run compiles nothing.
func LoadOrEmpty(path string) (*File, error) {
	f, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &File{}, nil
	}
	return f, err
}
