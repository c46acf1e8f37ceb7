// Package platform detects the host operating system and the package
// manager the install steps should use.
package platform

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🚫 ErrUnsupported is returned by steps that cannot run on this host.
var ErrUnsupported = errors.Base("unsupported platform")

// 📦 PackageManager identifies the system package manager.
type PackageManager string

const (
	Brew    PackageManager = "brew"
	Apt     PackageManager = "apt"
	Dnf     PackageManager = "dnf"
	Pacman  PackageManager = "pacman"
	Unknown PackageManager = ""
)

// 🖥️ Host describes the detected host environment.
type Host struct {
	OS             string // runtime.GOOS value
	Distro         string // linux distro ID, empty elsewhere
	PackageManager PackageManager
}

// osReleasePath is a var so tests can point at a fixture.
var osReleasePath = "/etc/os-release"

// 🔍 Detect inspects the running host.
func Detect() (Host, error) {
	host := Host{OS: runtime.GOOS}

	switch runtime.GOOS {
	case "darwin":
		host.PackageManager = Brew
		return host, nil
	case "linux":
		f, err := os.Open(osReleasePath)
		if err != nil {
			return host, errors.Errorf("reading %s: %w", osReleasePath, err)
		}
		defer f.Close()

		fields := parseOSRelease(f)
		host.Distro = fields["ID"]
		host.PackageManager = managerFor(fields["ID"], fields["ID_LIKE"])
		if host.PackageManager == Unknown {
			return host, errors.Errorf("distro %q: %w", host.Distro, ErrUnsupported)
		}
		return host, nil
	default:
		return host, errors.Errorf("os %q: %w", runtime.GOOS, ErrUnsupported)
	}
}

// parseOSRelease reads KEY=value lines, stripping quotes.
func parseOSRelease(r io.Reader) map[string]string {
	fields := map[string]string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = strings.Trim(value, `"'`)
	}
	return fields
}

// managerFor maps a distro ID (or its ID_LIKE fallbacks) to a package manager.
func managerFor(id, idLike string) PackageManager {
	candidates := append([]string{id}, strings.Fields(idLike)...)
	for _, c := range candidates {
		switch c {
		case "ubuntu", "debian":
			return Apt
		case "fedora", "rhel", "centos":
			return Dnf
		case "arch":
			return Pacman
		}
	}
	return Unknown
}
