package build

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goplus/buildc/internal/project"
	"github.com/goplus/buildc/platform"
	"github.com/goplus/buildc/toolchain"
)

var linuxAMD64 = platform.SignalsFor("linux", "amd64")

func helloWorld(codes *[]int) project.Project {
	return project.Func(func(ctx context.Context, c project.Compiler) error {
		code, err := c.Compile(ctx, "main.c", "HelloWorld")
		if codes != nil {
			*codes = append(*codes, code)
		}
		return err
	})
}

func newOptions(t *testing.T, r Runner, out *bytes.Buffer) Options {
	t.Helper()
	return Options{
		Compilers: toolchain.Signals{GNU: true},
		Target:    &linuxAMD64,
		SourceDir: "src",
		BinaryDir: filepath.Join(t.TempDir(), "bin"),
		Runner:    r,
		Stdout:    out,
	}
}

func TestScenarioSharedOutputRoot(t *testing.T) {
	r := &mockRunner{}
	var out bytes.Buffer
	opts := newOptions(t, r, &out)
	opts.BinaryDir = "bin"
	cfg, err := Resolve(opts)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b := NewBuilder(cfg)
	b.mkdir = func(string) error { return nil }

	var codes []int
	code, err := b.Run(context.Background(), helloWorld(&codes))
	if err != nil || code != 0 {
		t.Fatalf("Run = %d, %v", code, err)
	}
	want := "gcc -Wall -Wextra -Wpedantic -std=c99   src/main.c -o bin/HelloWorld_Linux-x86_64"
	if len(r.lines) != 1 || r.lines[0] != want {
		t.Fatalf("lines = %q, want %q", r.lines, want)
	}
	if len(codes) != 1 || codes[0] != 0 {
		t.Fatalf("compile codes = %v", codes)
	}
	for _, s := range []string{"* BuildC *", "Building for Linux-x86_64", "  " + want, "Success!"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("output misses %q:\n%s", s, out.String())
		}
	}
}

func TestScenarioPlatformScoped(t *testing.T) {
	r := &mockRunner{}
	var out bytes.Buffer
	opts := newOptions(t, r, &out)
	opts.PerPlatform = true
	cfg, err := Resolve(opts)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(cfg)
	if code, err := b.Run(context.Background(), helloWorld(nil)); err != nil || code != 0 {
		t.Fatalf("Run = %d, %v", code, err)
	}

	dir := filepath.Join(opts.BinaryDir, "Linux-x86_64")
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("output dir %s not created: %v", dir, err)
	}
	want := "gcc -Wall -Wextra -Wpedantic -std=c99   src/main.c -o " + filepath.ToSlash(dir) + "/HelloWorld"
	if len(r.lines) != 1 || r.lines[0] != want {
		t.Fatalf("lines = %q, want %q", r.lines, want)
	}
}

func TestScenarioMSVC(t *testing.T) {
	r := &mockRunner{}
	var out bytes.Buffer
	opts := newOptions(t, r, &out)
	opts.Compilers = toolchain.Signals{MSVC: true}
	win := platform.SignalsFor("windows", "amd64")
	opts.Target = &win
	cfg, err := Resolve(opts)
	if err != nil {
		t.Fatal(err)
	}
	cfg.BinaryDir = "bin"
	b := NewBuilder(cfg)
	b.mkdir = func(string) error { return nil }
	if _, err := b.Run(context.Background(), helloWorld(nil)); err != nil {
		t.Fatal(err)
	}
	want := `cl /Wall /std:c11   src\main.c /Fe "bin\HelloWorld"`
	if len(r.lines) != 1 || r.lines[0] != want {
		t.Fatalf("lines = %q, want %q", r.lines, want)
	}
}

func TestScenarioNoToolchain(t *testing.T) {
	r := &mockRunner{}
	var out bytes.Buffer
	opts := newOptions(t, r, &out)
	opts.Compilers = toolchain.Signals{}

	code, err := Run(context.Background(), opts, helloWorld(nil))
	if !IsKind(err, KindConfiguration) {
		t.Fatalf("Run error = %v, want configuration error", err)
	}
	if !errors.Is(err, toolchain.ErrNoToolchain) {
		t.Fatalf("Run error = %v, want ErrNoToolchain", err)
	}
	if code != ExitConfiguration {
		t.Fatalf("code = %d, want %d", code, ExitConfiguration)
	}
	if _, err := os.Stat(opts.BinaryDir); !os.IsNotExist(err) {
		t.Fatalf("output dir was touched: %v", err)
	}
	if len(r.lines) != 0 {
		t.Fatalf("compiler invoked: %q", r.lines)
	}
}

func TestScenarioDirectoryFailure(t *testing.T) {
	r := &mockRunner{}
	var out bytes.Buffer
	cfg, err := Resolve(newOptions(t, r, &out))
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(cfg)
	b.mkdir = func(path string) error { return os.ErrPermission }

	code, err := b.Run(context.Background(), helloWorld(nil))
	if !IsKind(err, KindIO) || !errors.Is(err, os.ErrPermission) {
		t.Fatalf("Run error = %v, want io error wrapping ErrPermission", err)
	}
	if code == 0 {
		t.Fatal("Run returned 0")
	}
	if len(r.lines) != 0 {
		t.Fatalf("compiler invoked: %q", r.lines)
	}
	if !strings.Contains(out.String(), "Failed to make") {
		t.Fatalf("output misses the failure banner:\n%s", out.String())
	}
}

func TestDirectoryBlockedByFile(t *testing.T) {
	r := &mockRunner{}
	var out bytes.Buffer
	opts := newOptions(t, r, &out)
	blocker := filepath.Join(t.TempDir(), "bin")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	opts.BinaryDir = blocker
	opts.PerPlatform = true

	code, err := Run(context.Background(), opts, helloWorld(nil))
	if !IsKind(err, KindIO) || code != ExitIO {
		t.Fatalf("Run = %d, %v; want io error", code, err)
	}
	if len(r.lines) != 0 {
		t.Fatalf("compiler invoked: %q", r.lines)
	}
}

func TestFirstFailureStopsRun(t *testing.T) {
	r := &mockRunner{codes: map[string]int{"src/b.c": 3}}
	rep := &mockReporter{}
	var out bytes.Buffer
	opts := newOptions(t, r, &out)
	opts.Reporter = rep

	// The project ignores compile failures; the builder must not.
	var codes []int
	proj := project.Func(func(ctx context.Context, c project.Compiler) error {
		for _, src := range []string{"a.c", "b.c", "c.c"} {
			code, _ := c.Compile(ctx, src, strings.TrimSuffix(src, ".c"))
			codes = append(codes, code)
		}
		return nil
	})

	code, err := Run(context.Background(), opts, proj)
	if code != 3 || !IsKind(err, KindCompile) {
		t.Fatalf("Run = %d, %v; want 3 and a compile error", code, err)
	}
	if len(r.lines) != 2 {
		t.Fatalf("runner saw %d compiles, want 2: %q", len(r.lines), r.lines)
	}
	if want := []int{0, 3, 3}; len(codes) != 3 || codes[0] != want[0] || codes[1] != want[1] || codes[2] != want[2] {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
	if len(rep.compiled) != 2 {
		t.Fatalf("reported %v", rep.compiled)
	}
	if !strings.Contains(out.String(), "Failed to build!") {
		t.Fatalf("output misses the failure banner:\n%s", out.String())
	}
}

func TestLaunchFailure(t *testing.T) {
	r := &mockRunner{err: &Error{Kind: KindLaunch, Step: "run gcc", Err: os.ErrNotExist}}
	var out bytes.Buffer
	code, err := Run(context.Background(), newOptions(t, r, &out), helloWorld(nil))
	if !IsKind(err, KindLaunch) || code != ExitLaunch {
		t.Fatalf("Run = %d, %v; want launch error", code, err)
	}
}

func TestEmptyProject(t *testing.T) {
	r := &mockRunner{}
	var out bytes.Buffer
	opts := newOptions(t, r, &out)
	code, err := Run(context.Background(), opts, project.Empty)
	if err != nil || code != 0 {
		t.Fatalf("Run = %d, %v", code, err)
	}
	if _, err := os.Stat(opts.BinaryDir); err != nil {
		t.Fatalf("output dir not created: %v", err)
	}
}

func TestInvalidRequest(t *testing.T) {
	r := &mockRunner{}
	var out bytes.Buffer
	proj := project.Func(func(ctx context.Context, c project.Compiler) error {
		_, err := c.Compile(ctx, "", "x")
		return err
	})
	code, err := Run(context.Background(), newOptions(t, r, &out), proj)
	if !errors.Is(err, toolchain.ErrInvalidRequest) || code == 0 {
		t.Fatalf("Run = %d, %v; want ErrInvalidRequest", code, err)
	}
	if len(r.lines) != 0 {
		t.Fatalf("compiler invoked: %q", r.lines)
	}
}

func TestResolveOverrides(t *testing.T) {
	opts := Options{
		Kind:      toolchain.Clang,
		Compilers: toolchain.Signals{GNU: true},
		Target:    &linuxAMD64,
		GNUFlags:  toolchain.Config{Libraries: "-lm"},
		MSVCFlags: toolchain.Config{Libraries: "user32.lib"},
	}
	cfg, err := Resolve(opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Toolchain != (toolchain.Toolchain{Kind: toolchain.Clang, CC: "clang"}) {
		t.Errorf("toolchain = %v", cfg.Toolchain)
	}
	if cfg.Flags.Libraries != "-lm" || cfg.Flags.Warn != toolchain.GNUConfig.Warn {
		t.Errorf("flags = %+v", cfg.Flags)
	}
	if cfg.SourceDir != DefaultSourceDir || cfg.BinaryDir != DefaultBinaryDir {
		t.Errorf("layout = %q, %q", cfg.SourceDir, cfg.BinaryDir)
	}
	if cfg.Platform.String() != "Linux-x86_64" {
		t.Errorf("platform = %v", cfg.Platform)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{&Error{Kind: KindCompile, Code: 7}, 7},
		{&Error{Kind: KindCompile}, 1},
		{&Error{Kind: KindConfiguration}, ExitConfiguration},
		{&Error{Kind: KindIO}, ExitIO},
		{&Error{Kind: KindLaunch}, ExitLaunch},
		{&Error{Kind: KindTimeout}, ExitTimeout},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestResolveEnv(t *testing.T) {
	var out bytes.Buffer
	opts := newOptions(t, nil, &out)
	opts.Env = map[string]string{"INCLUDE": `C:\sdk\include`}
	cfg, err := Resolve(opts)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := cfg.Runner.(*ExecRunner)
	if !ok {
		t.Fatalf("runner = %T, want *ExecRunner", cfg.Runner)
	}
	if r.Env["INCLUDE"] != `C:\sdk\include` || r.Stdout != &out {
		t.Fatalf("runner = %+v", r)
	}
}
