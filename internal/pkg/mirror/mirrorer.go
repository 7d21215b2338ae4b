package mirror

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/Masterminds/semver/v3"

	"github.com/ibm-mas/image-set-configs/internal/pkg/config"
	"github.com/ibm-mas/image-set-configs/internal/pkg/consts"
	"github.com/ibm-mas/image-set-configs/internal/pkg/emoji"
	clog "github.com/ibm-mas/image-set-configs/internal/pkg/log"
	"github.com/ibm-mas/image-set-configs/internal/pkg/progress"
	"github.com/ibm-mas/image-set-configs/internal/pkg/runner"
	"github.com/ibm-mas/image-set-configs/internal/pkg/stream"
)

// Status classifies the outcome of one package mirror operation.
type Status int

const (
	// StatusSuccess - every reported image was mirrored.
	StatusSuccess Status = iota
	// StatusPartial - the tool reported counts but they disagree.
	StatusPartial
	// StatusUnparsed - clean exit but no recognizable progress report.
	// Not the same thing as a confirmed zero-image result.
	StatusUnparsed
	// StatusFailed - nonzero exit or the operation never started.
	StatusFailed
	// StatusSkipped - mirroring disabled for this package by the user.
	StatusSkipped
	// StatusNoImages - the configuration held no images to mirror.
	StatusNoImages
)

// Result is the per-package record the batch driver aggregates.
type Result struct {
	Package  string
	Version  string
	Arch     string
	Status   Status
	Expected int
	Outcome  runner.Outcome
	ExitCode int
}

// RunnerInterface - subset of the command runner the mirrorer needs.
type RunnerInterface interface {
	Run(ctx context.Context, argv []string, tick stream.TickFunc) (runner.RunResult, error)
}

// MirrorerInterface drives one mirror operation per package.
type MirrorerInterface interface {
	MirrorPackage(ctx context.Context, pkg, version, arch string, enabled bool) (Result, error)
}

// PackageMirrorer resolves a package to its imageset configuration,
// sizes a progress bar from it, runs oc-mirror through the given route
// and maps the run result onto a Status.
type PackageMirrorer struct {
	Log         clog.PluggableLoggerInterface
	Route       Route
	Runner      RunnerInterface
	AuthFile    string
	PackagesDir string
	BarOutput   io.Writer
	// NewReporter is swappable so tests can observe ticks.
	NewReporter func(total int, label string) progress.Reporter
}

func NewPackageMirrorer(log clog.PluggableLoggerInterface, route Route, run RunnerInterface, authFile string, barOutput io.Writer) *PackageMirrorer {
	o := &PackageMirrorer{
		Log:         log,
		Route:       route,
		Runner:      run,
		AuthFile:    authFile,
		PackagesDir: "packages",
		BarOutput:   barOutput,
	}
	o.NewReporter = func(total int, label string) progress.Reporter {
		return progress.NewBar(total, label, o.BarOutput)
	}
	return o
}

// ConfigPath returns the imageset configuration location for a package,
// version and architecture: the version directory uses major.minor, the
// file name drops any build metadata.
func (o *PackageMirrorer) ConfigPath(pkg, version, arch string) (string, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return "", fmt.Errorf("invalid version %q for %s: %w", version, pkg, err)
	}
	majorMinor := fmt.Sprintf("%d.%d", v.Major(), v.Minor())
	fileVersion := fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
	if v.Prerelease() != "" {
		fileVersion += "-" + v.Prerelease()
	}
	return path.Join(o.PackagesDir, pkg, majorMinor, arch,
		fmt.Sprintf("%s-%s-%s.yaml", pkg, fileVersion, arch)), nil
}

// MirrorPackage runs one mirror operation. The returned error is non-nil
// only when the batch cannot usefully continue (oc-mirror not installed);
// every other failure is reported through the Result so the batch moves
// on to the next package.
func (o *PackageMirrorer) MirrorPackage(ctx context.Context, pkg, version, arch string, enabled bool) (Result, error) {
	result := Result{Package: pkg, Version: version, Arch: arch}
	label := fmt.Sprintf("%s v%s (%s)", pkg, version, arch)

	if !enabled {
		o.Log.Info("skipping %s version %s for %s architecture", pkg, version, arch)
		fmt.Fprintf(o.BarOutput, "%-50s %s  mirroring disabled by user\n", label, emoji.NextTrackButton)
		result.Status = StatusSkipped
		return result, nil
	}

	configPath, err := o.ConfigPath(pkg, version, arch)
	if err != nil {
		o.Log.Error("%v", err)
		fmt.Fprintf(o.BarOutput, "%-50s %s  invalid version\n", label, emoji.CrossMark)
		result.Status = StatusFailed
		return result, nil
	}

	o.Log.Info("mirroring %s version %s for %s architecture", pkg, version, arch)
	o.Log.Info("using configuration: %s", configPath)

	expected, err := config.CountAdditionalImages(configPath)
	if err != nil || expected == 0 {
		if err != nil {
			o.Log.Error("reading %s: %v", configPath, err)
		}
		o.Log.Error("no images found in config or failed to parse: %s", configPath)
		fmt.Fprintf(o.BarOutput, "%-50s %s  no images found in config\n", label, emoji.CrossMark)
		result.Status = StatusNoImages
		return result, nil
	}
	result.Expected = expected
	o.Log.Info("found %d images to mirror", expected)

	argv := append([]string{consts.MirrorBinary},
		o.Route.Args(configPath, o.AuthFile, path.Join(pkg, arch, version))...)

	reporter := o.NewReporter(expected, label)
	res, err := o.Runner.Run(ctx, argv, reporter.Advance)
	if err != nil {
		reporter.Finalize(progress.StateFailed)
		o.Log.Error("error executing command: %v", err)
		result.Status = StatusFailed
		return result, err
	}
	result.ExitCode = res.ExitCode
	result.Outcome = res.Outcome

	switch {
	case res.ExitCode != 0:
		reporter.Finalize(progress.StateFailed)
		o.Log.Error("mirror operation failed with exit code %d", res.ExitCode)
		result.Status = StatusFailed
	case !res.Parsed:
		reporter.Finalize(progress.StatePartial)
		o.Log.Warn("mirror operation completed but could not parse result statistics")
		result.Status = StatusUnparsed
	case res.Outcome.Succeeded():
		reporter.Finalize(progress.StateSuccess)
		o.Log.Info("mirror operation completed: %d/%d images mirrored (success=true)",
			res.Outcome.Mirrored, res.Outcome.Images)
		result.Status = StatusSuccess
	default:
		reporter.Finalize(progress.StatePartial)
		o.Log.Warn("mirror operation completed: %d/%d images mirrored (success=false)",
			res.Outcome.Mirrored, res.Outcome.Images)
		result.Status = StatusPartial
	}

	// The pre-flight count and the tool's own total are independent
	// numbers; disagreement is surfaced, never reconciled.
	if res.Parsed && res.Outcome.Images != expected {
		o.Log.Warn("config lists %d images but the tool reported %d", expected, res.Outcome.Images)
	}

	return result, nil
}
