package internal

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/goplus/buildc/internal/build"
	"github.com/goplus/buildc/internal/env"
	"github.com/goplus/buildc/internal/project"
	"github.com/goplus/buildc/platform"
	"github.com/goplus/buildc/toolchain"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	buildFile        string
	buildCC          string
	buildToolchain   string
	buildTarget      string
	buildSourceDir   string
	buildBinaryDir   string
	buildPerPlatform bool
	buildTimeout     time.Duration
	buildProgress    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&buildFile, "file", "f", project.DefaultFile, "Project file")
	flags.StringVar(&buildCC, "cc", "", "Compiler executable (overrides $CC)")
	flags.StringVar(&buildToolchain, "toolchain", "", "Toolchain: clang, gnu, mingw64, mingw32, msvc or custom")
	flags.StringVar(&buildTarget, "target", "", "Target triple used for the platform tag")
	flags.StringVar(&buildSourceDir, "src", "", "Source folder (default \"src\")")
	flags.StringVar(&buildBinaryDir, "bin", "", "Binary folder (default \"bin\")")
	flags.BoolVar(&buildPerPlatform, "per-platform", false, "Write binaries to <bin>/<platform>")
	flags.DurationVar(&buildTimeout, "timeout", 0, "Kill a compile running longer than this")
	rootCmd.Flags().BoolVar(&buildProgress, "progress", false, "Show a progress bar")
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, file, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	log.Debugf("host kernel: %s", env.HostKernel())

	var bar *progressReporter
	if buildProgress && len(file.Targets) > 0 {
		bar = newProgressReporter(os.Stderr, len(file.Targets))
		opts.Reporter = bar
	}

	// The exit status is carried by err and mapped in Execute.
	_, err = build.Run(context.Background(), opts, file.Project())
	if bar != nil {
		bar.Finish()
	}
	return err
}

// loadOptions merges the project file, the environment and the command line
// flags, in increasing priority.
func loadOptions(cmd *cobra.Command) (build.Options, *project.File, error) {
	file, err := project.LoadOrEmpty(buildFile)
	if err != nil {
		return build.Options{}, nil, &build.Error{Kind: build.KindConfiguration, Step: "load " + buildFile, Err: err}
	}
	settings, err := env.Lookup()
	if err != nil {
		return build.Options{}, nil, &build.Error{Kind: build.KindConfiguration, Step: "read environment", Err: err}
	}

	opts := build.Options{
		Kind:        settings.Kind,
		CC:          settings.CC,
		Target:      settings.Target,
		SourceDir:   file.SourceDir,
		BinaryDir:   file.BinaryDir,
		PerPlatform: file.PerPlatform,
		GNUFlags:    file.Flags(toolchain.GNU),
		MSVCFlags:   file.Flags(toolchain.MSVC),
		Env:         file.Env,
		Timeout:     settings.Timeout,
	}

	flags := cmd.Flags()
	if flags.Changed("cc") {
		opts.CC = buildCC
	}
	if flags.Changed("toolchain") {
		kind, err := toolchain.ParseKind(buildToolchain)
		if err != nil {
			return build.Options{}, nil, &build.Error{Kind: build.KindConfiguration, Step: "parse --toolchain", Err: err}
		}
		opts.Kind = kind
	}
	if flags.Changed("target") {
		sig, err := platform.ParseTriple(buildTarget)
		if err != nil {
			return build.Options{}, nil, &build.Error{Kind: build.KindConfiguration, Step: "parse --target", Err: err}
		}
		opts.Target = &sig
	}
	if flags.Changed("src") {
		opts.SourceDir = buildSourceDir
	}
	if flags.Changed("bin") {
		opts.BinaryDir = buildBinaryDir
	}
	if flags.Changed("per-platform") {
		opts.PerPlatform = buildPerPlatform
	}
	if flags.Changed("timeout") {
		opts.Timeout = buildTimeout
	}

	if opts.Kind == 0 && opts.CC == "" {
		opts.Compilers = toolchain.Probe(runtime.GOOS, exec.LookPath)
		log.Debugf("compiler signals: %+v", opts.Compilers)
	}
	return opts, file, nil
}
