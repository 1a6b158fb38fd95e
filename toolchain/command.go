package toolchain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Config holds the flag strings passed to every compile of a toolchain
// family. Each string may hold several flags separated by blanks. GCC-style
// flags may be quoted the way a POSIX shell would; MSVC flags are split on
// blanks only so that backslash paths survive.
type Config struct {
	Warn      string
	Standard  string
	Libraries string // e.g. -lm
	Includes  string // e.g. -Ilib/include
}

var (
	// GNUConfig is used by Clang, GCC, MinGW and custom compilers.
	GNUConfig = Config{
		Warn:     "-Wall -Wextra -Wpedantic",
		Standard: "-std=c99",
	}

	// MSVCConfig is used by cl.
	MSVCConfig = Config{
		Warn:     "/Wall",
		Standard: "/std:c11",
	}
)

// ConfigFor returns the default Config of kind.
func ConfigFor(kind Kind) Config {
	if kind.IsMSVC() {
		return MSVCConfig
	}
	return GNUConfig
}

// Override returns c with every non-empty field of o replacing its
// counterpart.
func (c Config) Override(o Config) Config {
	if o.Warn != "" {
		c.Warn = o.Warn
	}
	if o.Standard != "" {
		c.Standard = o.Standard
	}
	if o.Libraries != "" {
		c.Libraries = o.Libraries
	}
	if o.Includes != "" {
		c.Includes = o.Includes
	}
	return c
}

// args splits the flag strings into argument words.
func (c Config) args(msvc bool) ([]string, error) {
	var out []string
	for _, field := range [...]struct{ name, val string }{
		{"warn", c.Warn},
		{"standard", c.Standard},
		{"libraries", c.Libraries},
		{"includes", c.Includes},
	} {
		if msvc {
			out = append(out, strings.Fields(field.val)...)
			continue
		}
		words, err := shellquote.Split(field.val)
		if err != nil {
			return nil, fmt.Errorf("toolchain: %s flags %q: %w", field.name, field.val, err)
		}
		out = append(out, words...)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// Request asks for Source, relative to the source root, to be compiled into
// the executable Output.
type Request struct {
	Source string
	Output string
}

// ErrInvalidRequest reports a request that cannot name a file.
var ErrInvalidRequest = errors.New("invalid build request")

// Validate checks that both names are usable as single path arguments.
func (r Request) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("%w: empty source file", ErrInvalidRequest)
	}
	if r.Output == "" {
		return fmt.Errorf("%w: empty output name", ErrInvalidRequest)
	}
	for _, s := range [...]string{r.Source, r.Output} {
		if strings.ContainsAny(s, "\x00\r\n") {
			return fmt.Errorf("%w: %q contains a control character", ErrInvalidRequest, s)
		}
	}
	return nil
}

// Layout places the sources and binaries of a build run.
type Layout struct {
	SourceRoot string
	OutputRoot string

	// PlatformTag is appended to output names as "_<tag>" unless
	// PlatformScoped is set, in which case OutputRoot is already per
	// platform.
	PlatformTag    string
	PlatformScoped bool
}

// Invocation is one compiler command.
type Invocation struct {
	// Line is the display form of the command. Names are not quoted, so it
	// is printed and never parsed.
	Line string

	// Args is the argument vector that is executed; Args[0] is the compiler.
	Args []string
}

func (inv Invocation) String() string {
	return inv.Line
}

// BuildCommand assembles the command compiling req with tc.
//
// MSVC:
//
//	<cc> <warn> <std> <libs> <includes> <src>\<file> /Fe "<out>\<name>"
//
// every other kind:
//
//	<cc> <warn> <std> <libs> <includes> <src>/<file> -o <out>/<name>[_<tag>]
//
// req's paths always stay single arguments in Args, so shell metacharacters
// in them never reach a shell.
func BuildCommand(tc Toolchain, cfg Config, layout Layout, req Request) (Invocation, error) {
	if tc.CC == "" {
		return Invocation{}, fmt.Errorf("toolchain: empty compiler executable: %w", ErrNoToolchain)
	}
	if err := req.Validate(); err != nil {
		return Invocation{}, err
	}
	flags, err := cfg.args(tc.Kind.IsMSVC())
	if err != nil {
		return Invocation{}, err
	}

	var src, out, outFlag string
	if tc.Kind.IsMSVC() {
		src = msvcPath(layout.SourceRoot, req.Source)
		out = msvcPath(layout.OutputRoot, req.Output)
		outFlag = "/Fe"
	} else {
		name := req.Output
		if !layout.PlatformScoped && layout.PlatformTag != "" {
			name += "_" + layout.PlatformTag
		}
		src = posixPath(layout.SourceRoot, req.Source)
		out = posixPath(layout.OutputRoot, name)
		outFlag = "-o"
	}

	var b strings.Builder
	for _, field := range [...]string{tc.CC, cfg.Warn, cfg.Standard, cfg.Libraries, cfg.Includes, src, outFlag} {
		b.WriteString(field)
		b.WriteByte(' ')
	}
	if tc.Kind.IsMSVC() {
		b.WriteString(`"` + out + `"`)
	} else {
		b.WriteString(out)
	}

	args := make([]string, 0, len(flags)+4)
	args = append(args, tc.CC)
	args = append(args, flags...)
	args = append(args, src, outFlag, out)
	return Invocation{Line: b.String(), Args: args}, nil
}

func posixPath(root, name string) string {
	if root == "" {
		return name
	}
	return strings.TrimSuffix(root, "/") + "/" + name
}

func msvcPath(root, name string) string {
	name = strings.ReplaceAll(name, "/", `\`)
	if root == "" {
		return name
	}
	return strings.TrimSuffix(strings.ReplaceAll(root, "/", `\`), `\`) + `\` + name
}
