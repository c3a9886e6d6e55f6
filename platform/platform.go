// Package platform classifies the host Linux distribution and finds its
// package manager. Detection is read-only and never fails: anything it
// cannot work out is reported as Unknown.
package platform

import (
	"bytes"
	"os/exec"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

type Distribution string

const (
	Fedora   Distribution = "fedora"
	RHEL     Distribution = "rhel"
	CentOS   Distribution = "centos"
	Debian   Distribution = "debian"
	Ubuntu   Distribution = "ubuntu"
	Arch     Distribution = "arch"
	OpenSUSE Distribution = "opensuse"
	SUSE     Distribution = "suse"
	Unknown  Distribution = "unknown"
)

// Family groups distributions that share a package manager.
type Family string

const (
	FamilyFedora  Family = "fedora"
	FamilyDebian  Family = "debian"
	FamilyArch    Family = "arch"
	FamilySUSE    Family = "suse"
	FamilyUnknown Family = "unknown"
)

func (d Distribution) Family() Family {
	switch d {
	case Fedora, RHEL, CentOS:
		return FamilyFedora
	case Debian, Ubuntu:
		return FamilyDebian
	case Arch:
		return FamilyArch
	case OpenSUSE, SUSE:
		return FamilySUSE
	}
	return FamilyUnknown
}

const osReleasePath = "/etc/os-release"

// markers are checked in order when os-release is missing or inconclusive.
var markers = []struct {
	path string
	dist Distribution
}{
	{"/etc/fedora-release", Fedora},
	{"/etc/redhat-release", RHEL},
	{"/etc/debian_version", Debian},
	{"/etc/arch-release", Arch},
	{"/etc/SuSE-release", OpenSUSE},
}

// managers lists candidate binaries per family, preferred first.
var managers = map[Family][]string{
	FamilyFedora: {"dnf", "yum"},
	FamilyDebian: {"apt", "apt-get"},
	FamilyArch:   {"pacman"},
	FamilySUSE:   {"zypper"},
}

type Detector struct {
	Fs       afero.Fs
	LookPath func(file string) (string, error)
}

// NewDetector returns a detector for the real host.
func NewDetector() *Detector {
	return &Detector{Fs: afero.NewOsFs(), LookPath: exec.LookPath}
}

func (d *Detector) Distribution() Distribution {
	if data, err := afero.ReadFile(d.Fs, osReleasePath); err == nil {
		if dist := fromOSRelease(data); dist != Unknown {
			return dist
		}
	}
	for _, m := range markers {
		if ok, _ := afero.Exists(d.Fs, m.path); ok {
			return m.dist
		}
	}
	return Unknown
}

func fromOSRelease(data []byte) Distribution {
	env, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return Unknown
	}
	id := strings.ToLower(strings.TrimSpace(env["ID"]))
	like := strings.ToLower(strings.TrimSpace(env["ID_LIKE"]))

	switch id {
	case "fedora":
		return Fedora
	case "rhel":
		return RHEL
	case "centos":
		return CentOS
	case "ubuntu":
		return Ubuntu
	case "debian":
		return Debian
	case "arch", "archlinux":
		return Arch
	case "opensuse", "opensuse-leap", "opensuse-tumbleweed":
		return OpenSUSE
	case "sles":
		return SUSE
	}

	switch {
	case strings.Contains(like, "fedora"), strings.Contains(like, "rhel"):
		return Fedora
	case strings.Contains(like, "ubuntu"), strings.Contains(like, "debian"):
		// Only ID=ubuntu is Ubuntu itself; derivatives report as Debian.
		return Debian
	case strings.Contains(like, "arch"):
		return Arch
	case strings.Contains(like, "suse"):
		return OpenSUSE
	}
	return Unknown
}

// PackageManager returns the first manager for dist's family found on PATH.
func (d *Detector) PackageManager(dist Distribution) (string, bool) {
	for _, name := range managers[dist.Family()] {
		if _, err := d.LookPath(name); err == nil {
			return name, true
		}
	}
	return "", false
}

type Info struct {
	OS             string
	Distribution   Distribution
	PackageManager string
}

func (d *Detector) Info() Info {
	dist := d.Distribution()
	pm, _ := d.PackageManager(dist)
	return Info{OS: runtime.GOOS, Distribution: dist, PackageManager: pm}
}
