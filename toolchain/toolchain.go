// Package toolchain selects the C compiler a build run uses and assembles the
// command line for each compile request.
package toolchain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is a compiler family. Its value decides the command grammar.
type Kind int

const (
	Clang Kind = iota + 1
	GNU
	MinGW64
	MinGW32
	MSVC
	Custom
)

// Default compiler executables.
const (
	ClangCC   = "clang"
	GNUCC     = "gcc"
	MinGW64CC = "x86_64-w64-mingw32-gcc"
	MinGW32CC = "i686-w64-mingw32-gcc"
	MSVCCC    = "cl"
)

var kindNames = map[Kind]string{
	Clang:   "clang",
	GNU:     "gnu",
	MinGW64: "mingw64",
	MinGW32: "mingw32",
	MSVC:    "msvc",
	Custom:  "custom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DefaultCC returns the executable name of k, or "" for Custom.
func (k Kind) DefaultCC() string {
	switch k {
	case Clang:
		return ClangCC
	case GNU:
		return GNUCC
	case MinGW64:
		return MinGW64CC
	case MinGW32:
		return MinGW32CC
	case MSVC:
		return MSVCCC
	}
	return ""
}

// IsMSVC reports whether k uses the MSVC command grammar.
func (k Kind) IsMSVC() bool {
	return k == MSVC
}

// ParseKind parses a toolchain name as accepted on the command line.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "clang":
		return Clang, nil
	case "gnu", "gcc":
		return GNU, nil
	case "mingw64":
		return MinGW64, nil
	case "mingw32":
		return MinGW32, nil
	case "msvc", "cl":
		return MSVC, nil
	case "custom":
		return Custom, nil
	}
	return 0, fmt.Errorf("toolchain: unknown toolchain %q", name)
}

// -----------------------------------------------------------------------------

// Signals records which compiler identities are present in the build
// environment.
type Signals struct {
	Clang   bool
	GNU     bool
	LLVM    bool
	Intel   bool
	MinGW64 bool
	MinGW32 bool
	MSVC    bool
}

// ErrNoToolchain is returned when no compiler can be selected.
var ErrNoToolchain = errors.New("no usable default compiler")

// SelectDefault picks the compiler family from s. MSVC is authoritative,
// the MinGW cross compilers come next, and Clang wins over the GNU signal it
// also carries. A GNU signal from a compiler that also reports LLVM or Intel
// is not a GNU compiler.
func SelectDefault(s Signals) (Kind, error) {
	switch {
	case s.MSVC:
		return MSVC, nil
	case s.MinGW64:
		return MinGW64, nil
	case s.MinGW32:
		return MinGW32, nil
	case s.Clang:
		return Clang, nil
	case s.GNU && !s.LLVM && !s.Intel:
		return GNU, nil
	}
	return 0, ErrNoToolchain
}

// ClassifyCC returns the signals a compiler named cc would report. cc may be
// a bare name, a path, or carry a version suffix such as "clang-17".
func ClassifyCC(cc string) Signals {
	base := strings.ToLower(filepath.Base(strings.ReplaceAll(cc, `\`, "/")))
	base = strings.TrimSuffix(base, ".exe")

	var s Signals
	switch {
	case base == "cl" || base == "clang-cl":
		s.MSVC = true
	case strings.HasPrefix(base, "x86_64-w64-mingw32-"):
		s.MinGW64, s.GNU = true, true
	case strings.HasPrefix(base, "i686-w64-mingw32-"):
		s.MinGW32, s.GNU = true, true
	case hasTool(base, "clang"):
		s.Clang, s.GNU, s.LLVM = true, true, true
	case hasTool(base, "icx"), hasTool(base, "icc"):
		s.GNU, s.Intel = true, true
	case hasTool(base, "gcc"), hasTool(base, "cc"):
		s.GNU = true
	}
	return s
}

// hasTool reports whether base names tool, optionally with a target prefix
// ("aarch64-linux-gnu-gcc") or a version suffix ("gcc-13").
func hasTool(base, tool string) bool {
	if i := strings.LastIndex(base, "-"+tool); i >= 0 {
		base = base[i+1:]
	}
	if base == tool {
		return true
	}
	rest, ok := strings.CutPrefix(base, tool+"-")
	return ok && rest != "" && strings.Trim(rest, "0123456789.") == ""
}

// Probe looks for the known compilers on the search path of a goos host.
func Probe(goos string, lookPath func(file string) (string, error)) Signals {
	found := func(name string) bool {
		_, err := lookPath(name)
		return err == nil
	}
	var s Signals
	if goos == "windows" {
		if found(MSVCCC) {
			s.MSVC = true
		}
		if found(MinGW64CC) {
			s.MinGW64, s.GNU = true, true
		} else if found(MinGW32CC) {
			s.MinGW32, s.GNU = true, true
		}
	}
	if found(ClangCC) {
		s.Clang, s.GNU, s.LLVM = true, true, true
	}
	if found(GNUCC) {
		s.GNU = true
	}
	return s
}

// -----------------------------------------------------------------------------

// Toolchain is a resolved compiler: its family and the executable to run.
type Toolchain struct {
	Kind Kind
	CC   string
}

func (tc Toolchain) String() string {
	return tc.Kind.String() + " (" + tc.CC + ")"
}

// Resolve settles the toolchain of a build run. An explicit kind or cc
// overrides the signals. A cc whose family cannot be told from its name uses
// the Custom kind, which shares the GCC-style grammar.
func Resolve(kind Kind, cc string, s Signals) (Toolchain, error) {
	cc = strings.TrimSpace(cc)
	if kind == 0 && cc != "" {
		k, err := SelectDefault(ClassifyCC(cc))
		if err != nil {
			k = Custom
		}
		return Toolchain{Kind: k, CC: cc}, nil
	}
	if kind == 0 {
		k, err := SelectDefault(s)
		if err != nil {
			return Toolchain{}, err
		}
		kind = k
	}
	if _, ok := kindNames[kind]; !ok {
		return Toolchain{}, fmt.Errorf("toolchain: invalid kind %d", int(kind))
	}
	if cc == "" {
		cc = kind.DefaultCC()
	}
	if cc == "" {
		return Toolchain{}, fmt.Errorf("toolchain: %v requires a compiler executable: %w", kind, ErrNoToolchain)
	}
	return Toolchain{Kind: kind, CC: cc}, nil
}
