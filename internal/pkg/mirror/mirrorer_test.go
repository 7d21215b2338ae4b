package mirror

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clog "github.com/ibm-mas/image-set-configs/internal/pkg/log"
	"github.com/ibm-mas/image-set-configs/internal/pkg/progress"
	"github.com/ibm-mas/image-set-configs/internal/pkg/runner"
	"github.com/ibm-mas/image-set-configs/internal/pkg/stream"
)

type mockRunner struct {
	result runner.RunResult
	err    error
	argv   []string
	ticks  int
}

func (o *mockRunner) Run(ctx context.Context, argv []string, tick stream.TickFunc) (runner.RunResult, error) {
	o.argv = argv
	if o.err != nil {
		return runner.RunResult{ExitCode: 1}, o.err
	}
	// Simulate per-image completions for the mirrored count.
	for i := 0; i < o.result.Outcome.Mirrored; i++ {
		o.ticks++
		tick()
	}
	return o.result, nil
}

type countingReporter struct {
	advances int
	state    progress.State
	final    bool
}

func (o *countingReporter) Advance()                      { o.advances++ }
func (o *countingReporter) Finalize(state progress.State) { o.state = state; o.final = true }

func newTestMirrorer(t *testing.T, run RunnerInterface) (*PackageMirrorer, *countingReporter) {
	t.Helper()
	route, err := NewMirrorToMirror("registry.local/mas")
	require.NoError(t, err)

	o := NewPackageMirrorer(clog.New("none"), route, run, "auth.json", io.Discard)
	reporter := &countingReporter{}
	o.NewReporter = func(total int, label string) progress.Reporter { return reporter }
	return o, reporter
}

func writePackageConfig(t *testing.T, dir, pkg, version, arch string, images int) {
	t.Helper()
	content := "apiVersion: mirror.openshift.io/v1alpha2\nkind: ImageSetConfiguration\narchiveSize: 2\nmirror:\n  additionalImages:\n"
	for i := 0; i < images; i++ {
		content += "  - name: cp.icr.io/cp/img:" + version + "\n"
	}
	p := filepath.Join(dir, pkg, "9.1", arch)
	require.NoError(t, os.MkdirAll(p, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p, pkg+"-"+version+"-"+arch+".yaml"), []byte(content), 0o644))
}

func TestConfigPath(t *testing.T) {
	o, _ := newTestMirrorer(t, &mockRunner{})

	t.Run("Testing ConfigPath - should use major.minor directories", func(t *testing.T) {
		p, err := o.ConfigPath("ibm-mas", "9.1.8", "amd64")
		require.NoError(t, err)
		assert.Equal(t, "packages/ibm-mas/9.1/amd64/ibm-mas-9.1.8-amd64.yaml", p)
	})

	t.Run("Testing ConfigPath - should drop build metadata from the file name", func(t *testing.T) {
		p, err := o.ConfigPath("ibm-db2uoperator", "7.3.1+20250821.161005.16793", "s390x")
		require.NoError(t, err)
		assert.Equal(t, "packages/ibm-db2uoperator/7.3/s390x/ibm-db2uoperator-7.3.1-s390x.yaml", p)
	})

	t.Run("Testing ConfigPath - invalid version: should error", func(t *testing.T) {
		_, err := o.ConfigPath("ibm-mas", "nine", "amd64")
		assert.Error(t, err)
	})
}

func TestMirrorPackage(t *testing.T) {
	ctx := context.Background()

	t.Run("Testing MirrorPackage - full success: should report StatusSuccess", func(t *testing.T) {
		run := &mockRunner{result: runner.RunResult{
			ExitCode: 0,
			Outcome:  runner.Outcome{Images: 3, Mirrored: 3},
			Parsed:   true,
		}}
		o, reporter := newTestMirrorer(t, run)
		o.PackagesDir = filepath.Join(t.TempDir(), "packages")
		writePackageConfig(t, o.PackagesDir, "ibm-mas", "9.1.8", "amd64", 3)

		res, err := o.MirrorPackage(ctx, "ibm-mas", "9.1.8", "amd64", true)
		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, 3, res.Expected)
		assert.Equal(t, runner.Outcome{Images: 3, Mirrored: 3}, res.Outcome)
		assert.Equal(t, 3, reporter.advances)
		assert.True(t, reporter.final)
		assert.Equal(t, progress.StateSuccess, reporter.state)
		// The oc-mirror argv is assembled from the route.
		assert.Equal(t, "oc-mirror", run.argv[0])
		assert.Contains(t, run.argv, "--workspace")
	})

	t.Run("Testing MirrorPackage - nonzero exit: should report StatusFailed and continue", func(t *testing.T) {
		run := &mockRunner{result: runner.RunResult{ExitCode: 3}}
		o, reporter := newTestMirrorer(t, run)
		o.PackagesDir = filepath.Join(t.TempDir(), "packages")
		writePackageConfig(t, o.PackagesDir, "ibm-sls", "9.1.0", "amd64", 2)

		res, err := o.MirrorPackage(ctx, "ibm-sls", "9.1.0", "amd64", true)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, res.Status)
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, runner.Outcome{}, res.Outcome)
		assert.Equal(t, progress.StateFailed, reporter.state)
	})

	t.Run("Testing MirrorPackage - unparseable output: should be distinct from failure", func(t *testing.T) {
		run := &mockRunner{result: runner.RunResult{ExitCode: 0, Parsed: false}}
		o, reporter := newTestMirrorer(t, run)
		o.PackagesDir = filepath.Join(t.TempDir(), "packages")
		writePackageConfig(t, o.PackagesDir, "ibm-sls", "9.1.0", "amd64", 2)

		res, err := o.MirrorPackage(ctx, "ibm-sls", "9.1.0", "amd64", true)
		require.NoError(t, err)
		assert.Equal(t, StatusUnparsed, res.Status)
		assert.NotEqual(t, StatusFailed, res.Status)
		assert.Equal(t, runner.Outcome{}, res.Outcome)
		assert.Equal(t, progress.StatePartial, reporter.state)
	})

	t.Run("Testing MirrorPackage - partial mirror: should surface the counts", func(t *testing.T) {
		run := &mockRunner{result: runner.RunResult{
			ExitCode: 0,
			Outcome:  runner.Outcome{Images: 5, Mirrored: 4},
			Parsed:   true,
		}}
		o, reporter := newTestMirrorer(t, run)
		o.PackagesDir = filepath.Join(t.TempDir(), "packages")
		writePackageConfig(t, o.PackagesDir, "ibm-mas-manage", "9.1.2", "amd64", 5)

		res, err := o.MirrorPackage(ctx, "ibm-mas-manage", "9.1.2", "amd64", true)
		require.NoError(t, err)
		assert.Equal(t, StatusPartial, res.Status)
		assert.Equal(t, runner.Outcome{Images: 5, Mirrored: 4}, res.Outcome)
		assert.Equal(t, progress.StatePartial, reporter.state)
	})

	t.Run("Testing MirrorPackage - disabled package: should skip without running", func(t *testing.T) {
		run := &mockRunner{}
		o, _ := newTestMirrorer(t, run)

		res, err := o.MirrorPackage(ctx, "ibm-mas-predict", "9.1.4", "amd64", false)
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, res.Status)
		assert.Nil(t, run.argv)
	})

	t.Run("Testing MirrorPackage - missing config: should report StatusNoImages", func(t *testing.T) {
		run := &mockRunner{}
		o, _ := newTestMirrorer(t, run)
		o.PackagesDir = filepath.Join(t.TempDir(), "packages")

		res, err := o.MirrorPackage(ctx, "ibm-mas-iot", "9.1.7", "amd64", true)
		require.NoError(t, err)
		assert.Equal(t, StatusNoImages, res.Status)
		assert.Nil(t, run.argv)
	})

	t.Run("Testing MirrorPackage - tool not installed: should abort the batch", func(t *testing.T) {
		run := &mockRunner{err: runner.ErrToolNotFound}
		o, _ := newTestMirrorer(t, run)
		o.PackagesDir = filepath.Join(t.TempDir(), "packages")
		writePackageConfig(t, o.PackagesDir, "ibm-mas", "9.1.8", "amd64", 1)

		res, err := o.MirrorPackage(ctx, "ibm-mas", "9.1.8", "amd64", true)
		assert.True(t, errors.Is(err, runner.ErrToolNotFound))
		assert.Equal(t, StatusFailed, res.Status)
	})
}
