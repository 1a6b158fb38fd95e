package build

import (
	"context"
	"errors"
	"io"
	"os"
	"maps"
	"os/exec"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/goplus/buildc/toolchain"
)

// Runner runs one compiler invocation and returns its exit status.
type Runner interface {
	Run(ctx context.Context, inv toolchain.Invocation) (int, error)
}

// ExecRunner runs invocations as child processes, without a shell.
type ExecRunner struct {
	Stdout io.Writer         // defaults to os.Stdout
	Stderr io.Writer         // defaults to os.Stderr
	Env    map[string]string // set over the current environment
}

var _ Runner = (*ExecRunner)(nil)

// waitDelay bounds how long Run waits for output after the child is killed.
const waitDelay = 2 * time.Second

// Run executes inv.Args. A nonzero exit returns that status with a
// KindCompile error. A child that cannot be started returns
// ExitLaunchFailure with a KindLaunch error; one killed because ctx expired
// returns ExitLaunchFailure with a KindTimeout error.
func (r *ExecRunner) Run(ctx context.Context, inv toolchain.Invocation) (int, error) {
	if len(inv.Args) == 0 {
		return ExitLaunchFailure, &Error{Kind: KindLaunch, Step: "run", Err: errors.New("empty command")}
	}
	step := "run " + inv.Args[0]

	cmd := exec.CommandContext(ctx, inv.Args[0], inv.Args[1:]...)
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if len(r.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), r.Env)
	}
	cmd.WaitDelay = waitDelay

	return runResult(ctx, step, cmd.Run())
}

// runResult classifies the error returned by running the child. ctx only
// turns a failure into a timeout.
func runResult(ctx context.Context, step string, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ExitLaunchFailure, &Error{Kind: KindTimeout, Step: step, Err: ctx.Err()}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitStatus(exitErr)
		return code, &Error{Kind: KindCompile, Step: step, Code: code, Err: err}
	}
	return ExitLaunchFailure, &Error{Kind: KindLaunch, Step: step, Err: err}
}

// exitStatus returns the status of a child that ran and failed. A child
// killed by a signal reports 128+signal, as shells do.
func exitStatus(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code > 0 {
		return code
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}

// mergeEnv returns base with every variable of override set. Entries of base
// keep their order; new variables follow in key order.
func mergeEnv(base []string, override map[string]string) []string {
	out := make([]string, 0, len(base)+len(override))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, set := override[k]; !set {
			out = append(out, kv)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(override)) {
		out = append(out, k+"="+override[k])
	}
	return out
}
