// Package platform classifies the host operating system and CPU architecture
// into the small set of families the build driver names its outputs after.
package platform

import (
	"errors"
	"runtime"
	"strings"
)

// OS is an operating system family.
type OS int

const (
	UnknownOS OS = iota
	Linux
	BSD
	Apple
	Windows
	UnixGeneric
)

var osNames = [...]string{
	UnknownOS:   "Unknown",
	Linux:       "Linux",
	BSD:         "BSD",
	Apple:       "Mac",
	Windows:     "Windows",
	UnixGeneric: "Unix",
}

func (o OS) String() string {
	if o < 0 || int(o) >= len(osNames) {
		return osNames[UnknownOS]
	}
	return osNames[o]
}

// Arch is a CPU architecture family.
type Arch int

const (
	UnknownArch Arch = iota
	X86_64
	I386
	ARM
	ARM64
	RISCV
)

var archNames = [...]string{
	UnknownArch: "Unknown",
	X86_64:      "x86_64",
	I386:        "i386",
	ARM:         "ARM",
	ARM64:       "ARM64",
	RISCV:       "RISC-V",
}

func (a Arch) String() string {
	if a < 0 || int(a) >= len(archNames) {
		return archNames[UnknownArch]
	}
	return archNames[a]
}

// Descriptor identifies the platform a build run targets.
type Descriptor struct {
	OS   OS
	Arch Arch
}

// String returns the platform tag, "<os>-<arch>".
func (d Descriptor) String() string {
	return d.OS.String() + "-" + d.Arch.String()
}

// -----------------------------------------------------------------------------

// Signals is the set of target predicates a descriptor is derived from.
// Each field corresponds to one compile-time target signal.
type Signals struct {
	Linux   bool
	Android bool

	FreeBSD   bool
	NetBSD    bool
	OpenBSD   bool
	DragonFly bool

	Darwin bool
	IOS    bool

	Windows bool

	// Unix is set for every Unix-like target, Apple ones included.
	Unix bool

	AMD64 bool
	I386  bool
	ARM   bool
	ARM64 bool
	RISCV bool
}

type osRule struct {
	os    OS
	match func(s *Signals) bool
}

type archRule struct {
	arch  Arch
	match func(s *Signals) bool
}

// Rules are checked in order, the first match wins.
var osRules = []osRule{
	{Linux, func(s *Signals) bool { return s.Linux && !s.Android }},
	{BSD, func(s *Signals) bool { return s.FreeBSD || s.NetBSD || s.OpenBSD || s.DragonFly }},
	{Apple, func(s *Signals) bool { return s.Darwin || s.IOS }},
	{Windows, func(s *Signals) bool { return s.Windows }},
	{UnixGeneric, func(s *Signals) bool { return s.Unix }},
}

var archRules = []archRule{
	{X86_64, func(s *Signals) bool { return s.AMD64 }},
	{I386, func(s *Signals) bool { return s.I386 && !s.AMD64 }},
	{ARM, func(s *Signals) bool { return s.ARM && !s.ARM64 }},
	{ARM64, func(s *Signals) bool { return s.ARM64 }},
	{RISCV, func(s *Signals) bool { return s.RISCV }},
}

// Detect classifies s. Signals that match no rule yield UnknownOS or
// UnknownArch; Detect never fails.
func Detect(s Signals) Descriptor {
	d := Descriptor{}
	for _, r := range osRules {
		if r.match(&s) {
			d.OS = r.os
			break
		}
	}
	for _, r := range archRules {
		if r.match(&s) {
			d.Arch = r.arch
			break
		}
	}
	return d
}

// Host returns the descriptor of the target this binary was built for.
func Host() Descriptor {
	return Detect(HostSignals())
}

// HostSignals returns the signals of the target this binary was built for.
func HostSignals() Signals {
	return SignalsFor(runtime.GOOS, runtime.GOARCH)
}

// SignalsFor returns the signals of a Go target pair (GOOS, GOARCH).
func SignalsFor(goos, goarch string) Signals {
	var s Signals
	switch goos {
	case "linux":
		s.Linux, s.Unix = true, true
	case "android":
		s.Linux, s.Android, s.Unix = true, true, true
	case "freebsd":
		s.FreeBSD, s.Unix = true, true
	case "netbsd":
		s.NetBSD, s.Unix = true, true
	case "openbsd":
		s.OpenBSD, s.Unix = true, true
	case "dragonfly":
		s.DragonFly, s.Unix = true, true
	case "darwin":
		s.Darwin, s.Unix = true, true
	case "ios":
		s.IOS, s.Darwin, s.Unix = true, true, true
	case "windows":
		s.Windows = true
	case "solaris", "illumos", "aix", "hurd":
		s.Unix = true
	}
	switch goarch {
	case "amd64":
		s.AMD64 = true
	case "386":
		s.I386 = true
	case "arm":
		s.ARM = true
	case "arm64":
		s.ARM64 = true
	case "riscv64":
		s.RISCV = true
	}
	return s
}

// ErrEmptyTriple is returned by ParseTriple for an empty target triple.
var ErrEmptyTriple = errors.New("platform: empty target triple")

// ParseTriple returns the signals of a GNU-style target triple such as
// "x86_64-pc-linux-gnu" or "aarch64-apple-darwin". Components it does not
// recognise contribute no signals.
func ParseTriple(triple string) (Signals, error) {
	triple = strings.ToLower(strings.TrimSpace(triple))
	if triple == "" {
		return Signals{}, ErrEmptyTriple
	}
	parts := strings.Split(triple, "-")

	var s Signals
	switch arch := parts[0]; {
	case arch == "x86_64" || arch == "amd64":
		s.AMD64 = true
	case arch == "x86" || (len(arch) == 4 && arch[0] == 'i' && strings.HasSuffix(arch, "86")):
		s.I386 = true
	case arch == "aarch64" || strings.HasPrefix(arch, "arm64"):
		s.ARM64 = true
	case strings.HasPrefix(arch, "arm") || strings.HasPrefix(arch, "thumb"):
		s.ARM = true
	case strings.HasPrefix(arch, "riscv"):
		s.RISCV = true
	}

	for _, p := range parts[1:] {
		switch {
		case p == "linux":
			s.Linux, s.Unix = true, true
		case strings.HasPrefix(p, "android"):
			s.Android = true
		case strings.HasPrefix(p, "freebsd"):
			s.FreeBSD, s.Unix = true, true
		case strings.HasPrefix(p, "netbsd"):
			s.NetBSD, s.Unix = true, true
		case strings.HasPrefix(p, "openbsd"):
			s.OpenBSD, s.Unix = true, true
		case strings.HasPrefix(p, "dragonfly"):
			s.DragonFly, s.Unix = true, true
		case strings.HasPrefix(p, "darwin") || strings.HasPrefix(p, "macos"):
			s.Darwin, s.Unix = true, true
		case strings.HasPrefix(p, "ios"):
			s.IOS, s.Darwin, s.Unix = true, true, true
		case p == "windows" || strings.HasPrefix(p, "mingw") || p == "win32":
			s.Windows = true
		case strings.HasPrefix(p, "solaris") || p == "illumos" || strings.HasPrefix(p, "aix"):
			s.Unix = true
		}
	}
	return s, nil
}
