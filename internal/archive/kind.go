package archive

import (
	"fmt"
	"strings"
)

// Kind names an archive format by its file extension.
type Kind string

const (
	TarGz Kind = "tar.gz"
	TarXz Kind = "tar.xz"
	Zip   Kind = "zip"
)

// Ext returns the file extension including the leading dot.
func (k Kind) Ext() string {
	return "." + string(k)
}

// IsTar reports whether the kind is handled by ExtractTar.
func (k Kind) IsTar() bool {
	return k == TarGz || k == TarXz
}

// ParseKind accepts "tar.gz", ".tar.gz", "tgz", "tar.xz", "zip" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "tar.gz", "tgz":
		return TarGz, nil
	case "tar.xz", "txz":
		return TarXz, nil
	case "zip":
		return Zip, nil
	}
	return "", fmt.Errorf("unsupported archive kind %q", s)
}
