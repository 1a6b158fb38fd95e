package platform

import (
	"errors"
	"runtime"
	"testing"
)

func TestDetectGoTargets(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"linux", "amd64", "Linux-x86_64"},
		{"linux", "386", "Linux-i386"},
		{"linux", "arm", "Linux-ARM"},
		{"linux", "arm64", "Linux-ARM64"},
		{"linux", "riscv64", "Linux-RISC-V"},
		{"freebsd", "amd64", "BSD-x86_64"},
		{"netbsd", "arm64", "BSD-ARM64"},
		{"openbsd", "386", "BSD-i386"},
		{"darwin", "arm64", "Mac-ARM64"},
		{"darwin", "amd64", "Mac-x86_64"},
		{"ios", "arm64", "Mac-ARM64"},
		{"windows", "amd64", "Windows-x86_64"},
		{"windows", "386", "Windows-i386"},
		{"android", "arm64", "Unix-ARM64"},
		{"solaris", "amd64", "Unix-x86_64"},
		{"plan9", "amd64", "Unknown-x86_64"},
		{"linux", "mips", "Linux-Unknown"},
		{"js", "wasm", "Unknown-Unknown"},
	}
	for _, tt := range tests {
		got := Detect(SignalsFor(tt.goos, tt.goarch)).String()
		if got != tt.want {
			t.Errorf("Detect(%s/%s) = %q, want %q", tt.goos, tt.goarch, got, tt.want)
		}
	}
}

func TestDetectOrder(t *testing.T) {
	tests := []struct {
		name string
		s    Signals
		want Descriptor
	}{
		{"zero", Signals{}, Descriptor{UnknownOS, UnknownArch}},
		{"linux beats unix", Signals{Linux: true, Unix: true}, Descriptor{Linux, UnknownArch}},
		{"android is not linux", Signals{Linux: true, Android: true}, Descriptor{UnknownOS, UnknownArch}},
		{"bsd beats unix", Signals{OpenBSD: true, Unix: true}, Descriptor{BSD, UnknownArch}},
		{"apple beats windows", Signals{Darwin: true, Windows: true}, Descriptor{Apple, UnknownArch}},
		{"windows", Signals{Windows: true}, Descriptor{Windows, UnknownArch}},
		{"amd64 not shadowed by 386", Signals{AMD64: true, I386: true}, Descriptor{UnknownOS, X86_64}},
		{"arm64 not shadowed by arm", Signals{ARM: true, ARM64: true}, Descriptor{UnknownOS, ARM64}},
		{"riscv", Signals{RISCV: true}, Descriptor{UnknownOS, RISCV}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.s); got != tt.want {
				t.Fatalf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTriple(t *testing.T) {
	tests := []struct {
		triple string
		want   string
	}{
		{"x86_64-pc-linux-gnu", "Linux-x86_64"},
		{"x86_64-unknown-linux-musl", "Linux-x86_64"},
		{"i686-pc-linux-gnu", "Linux-i386"},
		{"aarch64-apple-darwin", "Mac-ARM64"},
		{"arm64-apple-ios", "Mac-ARM64"},
		{"x86_64-apple-macosx10.15", "Mac-x86_64"},
		{"armv7-unknown-linux-gnueabihf", "Linux-ARM"},
		{"aarch64-linux-android", "Unix-ARM64"},
		{"riscv64-unknown-linux-gnu", "Linux-RISC-V"},
		{"x86_64-unknown-freebsd13.2", "BSD-x86_64"},
		{"i686-w64-mingw32", "Windows-i386"},
		{"x86_64-pc-windows-msvc", "Windows-x86_64"},
		{"sparc64-sun-solaris2.11", "Unix-Unknown"},
		{"wasm32-unknown-unknown", "Unknown-Unknown"},
		{"  X86_64-PC-Linux-GNU ", "Linux-x86_64"},
	}
	for _, tt := range tests {
		s, err := ParseTriple(tt.triple)
		if err != nil {
			t.Fatalf("ParseTriple(%q): %v", tt.triple, err)
		}
		if got := Detect(s).String(); got != tt.want {
			t.Errorf("ParseTriple(%q) detects %q, want %q", tt.triple, got, tt.want)
		}
	}
}

func TestParseTripleEmpty(t *testing.T) {
	if _, err := ParseTriple("  "); !errors.Is(err, ErrEmptyTriple) {
		t.Fatalf("ParseTriple(blank) error = %v, want ErrEmptyTriple", err)
	}
}

func TestHostMatchesRuntime(t *testing.T) {
	want := Detect(SignalsFor(runtime.GOOS, runtime.GOARCH))
	if got := Host(); got != want {
		t.Fatalf("Host() = %v, want %v", got, want)
	}
}

func TestStringOutOfRange(t *testing.T) {
	if got := OS(42).String(); got != "Unknown" {
		t.Errorf("OS(42).String() = %q", got)
	}
	if got := Arch(-1).String(); got != "Unknown" {
		t.Errorf("Arch(-1).String() = %q", got)
	}
}
