package platform

import (
	"runtime"
	"strconv"
)

// OS classifies the host operating system.
type OS string

// Arch classifies the host CPU architecture as far as download names care.
type Arch string

const (
	Windows OS = "windows"
	Mac     OS = "mac"
	Linux   OS = "linux"
	Other   OS = "other"
)

const (
	X64   Arch = "x64"
	X86   Arch = "x86"
	ARM64 Arch = "arm64"
)

// Platform is the {OS, Arch} pair used to pick download targets.
type Platform struct {
	OS   OS
	Arch Arch
}

// Current returns the platform of the running process.
func Current() Platform {
	return Platform{OS: DetectOS(runtime.GOOS), Arch: DetectArch(runtime.GOARCH, strconv.IntSize)}
}

// DetectOS maps a GOOS value to an OS.
func DetectOS(goos string) OS {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return Mac
	case "linux":
		return Linux
	default:
		return Other
	}
}

// DetectArch maps a GOARCH value to an Arch. Architectures without a
// dedicated entry fall back on word size.
func DetectArch(goarch string, wordSize int) Arch {
	switch goarch {
	case "amd64":
		return X64
	case "386":
		return X86
	case "arm64":
		return ARM64
	}
	if wordSize == 64 {
		return X64
	}
	return X86
}

func (a Arch) Is64Bit() bool {
	return a == X64 || a == ARM64
}

// IsUnixLike reports whether ownership and permission bits are meaningful.
func (o OS) IsUnixLike() bool {
	return o != Windows
}

func (p Platform) String() string {
	return string(p.OS) + "-" + string(p.Arch)
}
