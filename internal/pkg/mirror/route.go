package mirror

import (
	"errors"
	"fmt"
	"path"

	"github.com/ibm-mas/image-set-configs/internal/pkg/consts"
)

// Mode names a mirroring workflow the way the CLI spells it.
type Mode string

const (
	MirrorToMirrorMode Mode = "m2m"
	MirrorToDiskMode   Mode = "m2d"
	DiskToMirrorMode   Mode = "d2m"

	defaultWorkspaceRoot = "workspace"
	defaultOutputRoot    = "output-dir"
)

var errMissingTargetRegistry = errors.New("target registry is required")

// Route resolves one workflow to the oc-mirror argument list for a given
// package. Each variant carries exactly the fields its workflow needs, so
// an invalid combination cannot be constructed.
type Route interface {
	Mode() Mode
	// Args maps a package's config path and per-package subpath
	// (<package>/<arch>/<version>) to oc-mirror arguments, binary name
	// excluded. Pure; no filesystem access.
	Args(configPath, authFile, packagePath string) []string
}

// MirrorToMirror copies straight from the source registries to the target
// registry, using a local workspace for oc-mirror's working files.
type MirrorToMirror struct {
	TargetRegistry string
	WorkspaceRoot  string
}

func NewMirrorToMirror(targetRegistry string) (MirrorToMirror, error) {
	if targetRegistry == "" {
		return MirrorToMirror{}, fmt.Errorf("%s: %w", MirrorToMirrorMode, errMissingTargetRegistry)
	}
	return MirrorToMirror{TargetRegistry: targetRegistry, WorkspaceRoot: defaultWorkspaceRoot}, nil
}

func (o MirrorToMirror) Mode() Mode {
	return MirrorToMirrorMode
}

func (o MirrorToMirror) Args(configPath, authFile, packagePath string) []string {
	return []string{
		"--v2", "--config", configPath, "--authfile", authFile,
		"--workspace", consts.FileProtocol + path.Join(o.WorkspaceRoot, packagePath),
		consts.DockerProtocol + o.TargetRegistry,
	}
}

// MirrorToDisk packs the images into a local directory for transfer into
// a disconnected environment.
type MirrorToDisk struct {
	OutputRoot string
}

func NewMirrorToDisk() MirrorToDisk {
	return MirrorToDisk{OutputRoot: defaultOutputRoot}
}

func (o MirrorToDisk) Mode() Mode {
	return MirrorToDiskMode
}

func (o MirrorToDisk) Args(configPath, authFile, packagePath string) []string {
	return []string{
		"--v2", "--config", configPath, "--authfile", authFile,
		consts.FileProtocol + path.Join(o.OutputRoot, packagePath),
	}
}

// DiskToMirror pushes a previously packed local directory to the target
// registry inside the disconnected environment.
type DiskToMirror struct {
	TargetRegistry string
	OutputRoot     string
}

func NewDiskToMirror(targetRegistry string) (DiskToMirror, error) {
	if targetRegistry == "" {
		return DiskToMirror{}, fmt.Errorf("%s: %w", DiskToMirrorMode, errMissingTargetRegistry)
	}
	return DiskToMirror{TargetRegistry: targetRegistry, OutputRoot: defaultOutputRoot}, nil
}

func (o DiskToMirror) Mode() Mode {
	return DiskToMirrorMode
}

func (o DiskToMirror) Args(configPath, authFile, packagePath string) []string {
	return []string{
		"--v2", "--config", configPath, "--authfile", authFile,
		"--from", consts.FileProtocol + path.Join(o.OutputRoot, packagePath),
		consts.DockerProtocol + o.TargetRegistry,
	}
}

// ParseRoute maps the CLI's mode string to a Route variant, rejecting
// combinations such as m2m without a target registry at construction
// time rather than mid-batch.
func ParseRoute(mode, targetRegistry string) (Route, error) {
	switch Mode(mode) {
	case MirrorToMirrorMode:
		r, err := NewMirrorToMirror(targetRegistry)
		if err != nil {
			return nil, err
		}
		return r, nil
	case MirrorToDiskMode:
		return NewMirrorToDisk(), nil
	case DiskToMirrorMode:
		r, err := NewDiskToMirror(targetRegistry)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported mirror mode: %s", mode)
	}
}
