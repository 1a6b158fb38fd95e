package build

import (
	"context"
	"strings"

	"github.com/goplus/buildc/toolchain"
)

// mockRunner records invocations instead of running them.
type mockRunner struct {
	lines []string
	args  [][]string
	// codes maps a substring of the command line to the exit status to
	// report for it.
	codes map[string]int
	err   error
}

func (m *mockRunner) Run(ctx context.Context, inv toolchain.Invocation) (int, error) {
	m.lines = append(m.lines, inv.Line)
	m.args = append(m.args, inv.Args)
	if m.err != nil {
		return ExitLaunchFailure, m.err
	}
	for sub, code := range m.codes {
		if strings.Contains(inv.Line, sub) {
			return code, nil
		}
	}
	return 0, nil
}

// mockReporter records reported compiles.
type mockReporter struct {
	compiled []string
}

func (r *mockReporter) Compiled(source, output string, code int) {
	r.compiled = append(r.compiled, source)
}
