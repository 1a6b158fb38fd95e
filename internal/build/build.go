// Package build drives a build run: it resolves the platform and toolchain
// once, prepares the output directory and compiles what the project asks for,
// one compiler invocation at a time.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gookit/color"
	"github.com/goplus/buildc/internal/project"
	"github.com/goplus/buildc/platform"
	"github.com/goplus/buildc/toolchain"
	"github.com/kballard/go-shellquote"
	"github.com/qiniu/x/log"
)

// Default layout, relative to the working directory.
const (
	DefaultSourceDir = "src"
	DefaultBinaryDir = "bin"
)

// Reporter is told about every finished compile.
type Reporter interface {
	Compiled(source, output string, code int)
}

// Options are the unresolved inputs of a build run.
type Options struct {
	// Kind and CC override toolchain detection when set.
	Kind toolchain.Kind
	CC   string

	// Compilers are the compiler identities found in the environment.
	Compilers toolchain.Signals

	// Target is the platform the outputs are tagged with. Nil means the host.
	Target *platform.Signals

	SourceDir   string
	BinaryDir   string
	PerPlatform bool

	// GNUFlags and MSVCFlags override the default flag strings of the
	// resolved toolchain's family.
	GNUFlags  toolchain.Config
	MSVCFlags toolchain.Config

	// Env is set over the process environment of every compile.
	Env map[string]string

	Timeout  time.Duration // per compile, 0 for none
	Runner   Runner        // defaults to an ExecRunner on Stdout with Env
	Stdout   io.Writer     // defaults to os.Stdout
	Reporter Reporter
}

// Config is the resolved configuration of a build run. It does not change
// once the run has started.
type Config struct {
	Platform    platform.Descriptor
	Toolchain   toolchain.Toolchain
	Flags       toolchain.Config
	SourceDir   string
	BinaryDir   string
	PerPlatform bool
	Env         map[string]string
	Timeout     time.Duration
	Runner      Runner
	Stdout      io.Writer
	Reporter    Reporter
}

func (o *Options) flags(kind toolchain.Kind) toolchain.Config {
	if kind.IsMSVC() {
		return o.MSVCFlags
	}
	return o.GNUFlags
}

// Resolve settles the platform and the toolchain of opts. It fails with a
// KindConfiguration error when no toolchain can be resolved.
func Resolve(opts Options) (Config, error) {
	sig := platform.HostSignals()
	if opts.Target != nil {
		sig = *opts.Target
	}
	plat := platform.Detect(sig)
	log.Debugf("platform: %v", plat)

	tc, err := toolchain.Resolve(opts.Kind, opts.CC, opts.Compilers)
	if err != nil {
		return Config{}, &Error{Kind: KindConfiguration, Step: "select toolchain", Err: err}
	}
	if tc.Kind == toolchain.Custom && opts.Kind != toolchain.Custom {
		log.Warnf("%s is not a known compiler, using the GCC-style grammar", tc.CC)
	}
	log.Debugf("toolchain: %v", tc)

	cfg := Config{
		Platform:    plat,
		Toolchain:   tc,
		Flags:       toolchain.ConfigFor(tc.Kind).Override(opts.flags(tc.Kind)),
		SourceDir:   opts.SourceDir,
		BinaryDir:   opts.BinaryDir,
		PerPlatform: opts.PerPlatform,
		Env:         opts.Env,
		Timeout:     opts.Timeout,
		Runner:      opts.Runner,
		Stdout:      opts.Stdout,
		Reporter:    opts.Reporter,
	}
	if cfg.SourceDir == "" {
		cfg.SourceDir = DefaultSourceDir
	}
	if cfg.BinaryDir == "" {
		cfg.BinaryDir = DefaultBinaryDir
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Runner == nil {
		cfg.Runner = &ExecRunner{Stdout: cfg.Stdout, Env: cfg.Env}
	}
	return cfg, nil
}

// Run resolves opts and builds proj. A configuration error aborts before
// anything touches the file system.
func Run(ctx context.Context, opts Options, proj project.Project) (int, error) {
	cfg, err := Resolve(opts)
	if err != nil {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		fmt.Fprintln(w, color.Red.Sprint("Failed to select a compiler!"))
		return ExitCode(err), err
	}
	return NewBuilder(cfg).Run(ctx, proj)
}

// -----------------------------------------------------------------------------

// Builder executes one build run.
type Builder struct {
	cfg    Config
	mkdir  func(path string) error
	failed error
}

var _ project.Compiler = (*Builder)(nil)

// NewBuilder returns a Builder for a resolved configuration.
func NewBuilder(cfg Config) *Builder {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Runner == nil {
		cfg.Runner = &ExecRunner{Stdout: cfg.Stdout, Env: cfg.Env}
	}
	return &Builder{cfg: cfg, mkdir: EnsureDir}
}

// OutputDir is the directory executables are written to.
func (b *Builder) OutputDir() string {
	if b.cfg.PerPlatform {
		return filepath.Join(b.cfg.BinaryDir, b.cfg.Platform.String())
	}
	return b.cfg.BinaryDir
}

// Layout returns the layout handed to the command builder.
func (b *Builder) Layout() toolchain.Layout {
	return toolchain.Layout{
		SourceRoot:     filepath.ToSlash(b.cfg.SourceDir),
		OutputRoot:     filepath.ToSlash(b.OutputDir()),
		PlatformTag:    b.cfg.Platform.String(),
		PlatformScoped: b.cfg.PerPlatform,
	}
}

// Command returns the invocation compiling source into output.
func (b *Builder) Command(source, output string) (toolchain.Invocation, error) {
	inv, err := toolchain.BuildCommand(b.cfg.Toolchain, b.cfg.Flags, b.Layout(), toolchain.Request{Source: source, Output: output})
	if err != nil {
		return inv, &Error{Kind: KindConfiguration, Step: "compile " + source, Err: err}
	}
	return inv, nil
}

// Compile compiles source into output and returns the compiler's exit
// status. Once a compile has failed, every later call returns that failure
// without running anything.
func (b *Builder) Compile(ctx context.Context, source, output string) (int, error) {
	if b.failed != nil {
		return ExitCode(b.failed), b.failed
	}
	code, err := b.compile(ctx, source, output)
	if err != nil {
		b.failed = err
	}
	if b.cfg.Reporter != nil {
		b.cfg.Reporter.Compiled(source, output, code)
	}
	return code, err
}

func (b *Builder) compile(ctx context.Context, source, output string) (int, error) {
	inv, err := b.Command(source, output)
	if err != nil {
		return ExitCode(err), err
	}
	fmt.Fprintf(b.cfg.Stdout, "  %s\n", inv.Line)
	log.Debugf("exec: %s", shellquote.Join(inv.Args...))

	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}
	code, err := b.cfg.Runner.Run(ctx, inv)
	if err == nil && code != 0 {
		err = &Error{Kind: KindCompile, Step: "run " + inv.Args[0], Code: code}
	}
	if err != nil && !errors.As(err, new(*Error)) {
		err = &Error{Kind: KindLaunch, Step: "run " + inv.Args[0], Err: err}
	}
	return code, err
}

// Run builds proj: it prints the banner, prepares the output directory and
// lets proj issue its compiles. The first failure ends the run; its exit
// status is returned.
func (b *Builder) Run(ctx context.Context, proj project.Project) (int, error) {
	w := b.cfg.Stdout
	fmt.Fprintln(w, color.Bold.Sprint("**********"))
	fmt.Fprintln(w, color.Bold.Sprint("* BuildC *"))
	fmt.Fprintln(w, color.Bold.Sprint("**********"))
	fmt.Fprintf(w, "Building for %s\n", b.cfg.Platform)

	dir := b.OutputDir()
	if err := b.mkdir(dir); err != nil {
		if !IsKind(err, KindIO) {
			err = &Error{Kind: KindIO, Step: "create " + dir, Err: err}
		}
		fmt.Fprintln(w, color.Red.Sprintf("Failed to make %s directory!", dir))
		return ExitCode(err), err
	}

	err := proj.Build(ctx, b)
	if err == nil {
		err = b.failed
	}
	if err != nil {
		fmt.Fprintln(w, color.Red.Sprint("Failed to build!"))
		return ExitCode(err), err
	}
	fmt.Fprintln(w, color.Green.Sprint("Success!"))
	return 0, nil
}
