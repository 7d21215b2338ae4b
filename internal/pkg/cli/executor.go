package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"k8s.io/kubectl/pkg/util/templates"

	"github.com/ibm-mas/image-set-configs/internal/pkg/catalog"
	"github.com/ibm-mas/image-set-configs/internal/pkg/emoji"
	"github.com/ibm-mas/image-set-configs/internal/pkg/generator"
	clog "github.com/ibm-mas/image-set-configs/internal/pkg/log"
	"github.com/ibm-mas/image-set-configs/internal/pkg/mirror"
	"github.com/ibm-mas/image-set-configs/internal/pkg/runner"
	"github.com/ibm-mas/image-set-configs/internal/pkg/version"
)

var (
	mirrorLongDesc = templates.LongDesc(
		`
		Mirror the container images of IBM Maximo Application Suite packages and their
		dependencies using pre-generated ImageSetConfiguration documents as input.

		The catalog identifier selects the published MAS catalog (and with it the concrete
		package versions for the chosen release track); the per-package flags select which
		packages to mirror. The heavy lifting is delegated to the oc-mirror binary; this
		command drives it once per package, renders live progress and aggregates results.

		There are three workflows available:

			- m2m (mirror to mirror): copy from the IBM entitled registry straight to the target registry.
			- m2d (mirror to disk): pack the images into a local directory for transfer.
			- d2m (disk to mirror): push a previously packed directory to the target registry.
		`,
	)
	mirrorExamples = templates.Examples(
		`
# Mirror SLS and MAS Core directly to a registry
mas-mirror --catalog v9-260129-amd64 --release 9.1.x --mode m2m --target-registry registry.example.com/mas --sls --core

# Pack everything for a disconnected install
mas-mirror --catalog v9-260129-amd64 --release 9.1.x --mode m2d --sls --tsm --core --manage

# Push the packed images inside the disconnected environment
mas-mirror --catalog v9-260129-amd64 --release 9.1.x --mode d2m --target-registry registry.example.com/mas --sls --tsm --core --manage
		`,
	)
)

// MirrorOptions - flag surface of the root command.
type MirrorOptions struct {
	CatalogID      string
	Release        string
	Mode           string
	TargetRegistry string
	AuthFile       string
	LogLevel       string
}

// ExecutorSchema - wires the collaborators of one batch invocation.
type ExecutorSchema struct {
	Log      clog.PluggableLoggerInterface
	FileLog  *clog.FileLogger
	Opts     *MirrorOptions
	Catalog  *catalog.Catalog
	Route    mirror.Route
	Mirrorer mirror.MirrorerInterface
	RunID    string
	Out      io.Writer
	enabled  map[string]*bool
}

// NewMirrorCmd - cobra entry point
func NewMirrorCmd(log clog.PluggableLoggerInterface) *cobra.Command {
	opts := &MirrorOptions{
		LogLevel: "info",
	}
	ex := &ExecutorSchema{
		Log:     log,
		Opts:    opts,
		Out:     os.Stdout,
		enabled: map[string]*bool{},
	}

	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s --catalog <catalog> --release <release> --mode <mode> [package flags]", filepath.Base(os.Args[0])),
		Short:         "Mirror IBM MAS container images using oc-mirror",
		Long:          mirrorLongDesc,
		Example:       mirrorExamples,
		SilenceErrors: false,
		SilenceUsage:  false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !slices.Contains(logLevelChoices, opts.LogLevel) {
				log.Error("log-level has an invalid value %s, it should be one of (info, debug, trace, error)", opts.LogLevel)
				os.Exit(1)
			}
			log.Level(opts.LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ex.Validate(); err != nil {
				return err
			}
			if err := ex.Complete(); err != nil {
				return err
			}
			defer ex.FileLog.Close()
			return ex.Run(cmd.Context())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.CatalogID, "catalog", "", "Catalog version (e.g. v9-240625-amd64, v9-260129-amd64)")
	fs.StringVar(&opts.Release, "release", "", fmt.Sprintf("MAS release version, one of %s", strings.Join(releaseChoices, ", ")))
	fs.StringVar(&opts.Mode, "mode", "", "Mirror mode, one of m2m, m2d, d2m")
	fs.StringVar(&opts.TargetRegistry, "target-registry", "", "Target registry for m2m and d2m modes (e.g. registry.example.com/namespace)")
	fs.StringVar(&opts.AuthFile, "authfile", defaultAuthFile(), "Registry credentials passed to oc-mirror")
	fs.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level one of (info, debug, trace, error)")
	// nolint: errcheck
	cmd.MarkFlagRequired("catalog")
	// nolint: errcheck
	cmd.MarkFlagRequired("release")
	// nolint: errcheck
	cmd.MarkFlagRequired("mode")

	for _, p := range catalog.Packages {
		enabled := false
		fs.BoolVar(&enabled, p.Flag, false, fmt.Sprintf("Mirror %s images (%s)", p.Name, p.Description))
		ex.enabled[p.Flag] = &enabled
	}

	cmd.AddCommand(version.NewVersionCommand(log))
	cmd.AddCommand(NewGenerateCmd(log))

	return cmd
}

func defaultAuthFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".ibm-mas", "auth.json")
}

// Validate - checks flag combinations before any work starts.
func (o *ExecutorSchema) Validate() error {
	if !slices.Contains(releaseChoices, o.Opts.Release) {
		return fmt.Errorf("--release must be one of %s", strings.Join(releaseChoices, ", "))
	}
	if _, err := mirror.ParseRoute(o.Opts.Mode, o.Opts.TargetRegistry); err != nil {
		return err
	}
	return nil
}

// Complete - resolves the catalog, the route and the batch log sinks.
func (o *ExecutorSchema) Complete() error {
	route, err := mirror.ParseRoute(o.Opts.Mode, o.Opts.TargetRegistry)
	if err != nil {
		return err
	}
	o.Route = route

	o.Catalog, err = catalog.GetCatalog(o.Opts.CatalogID)
	if err != nil {
		return err
	}

	o.RunID = uuid.New().String()
	logName := fmt.Sprintf("mirror-%s-%s-%s-%s.log",
		o.Opts.CatalogID,
		strings.ReplaceAll(o.Opts.Release, ".", ""),
		o.Opts.Mode,
		time.Now().Format("20060102_150405"))
	o.FileLog, err = clog.NewFileLogger(logName)
	if err != nil {
		return err
	}

	o.FileLog.Info("catalog: %s", o.Opts.CatalogID)
	o.FileLog.Info("release: %s", o.Opts.Release)
	o.FileLog.Info("architecture: %s", o.Catalog.Arch())
	o.FileLog.Info("mode: %s", o.Opts.Mode)
	o.FileLog.Info("run id: %s", o.RunID)
	o.FileLog.Info("log file: %s", logName)

	run := runner.New(o.FileLog, o.FileLog)
	o.Mirrorer = mirror.NewPackageMirrorer(o.FileLog, o.Route, run, o.Opts.AuthFile, o.Out)
	return nil
}

// Run - mirrors every selected package sequentially, then summarizes.
// A single package failure never stops the batch; a missing oc-mirror
// binary does.
func (o *ExecutorSchema) Run(ctx context.Context) error {
	arch := o.Catalog.Arch()
	fmt.Fprintf(o.Out, "Mirroring Images for %s (%s)\n", o.Opts.CatalogID, o.Opts.Mode)

	var results []mirror.Result
	currentGroup := ""
	for _, p := range catalog.Packages {
		if p.Group != currentGroup {
			fmt.Fprintf(o.Out, "\n%s\n", p.Group)
			currentGroup = p.Group
		}

		enabled := *o.enabled[p.Flag]
		pkgVersion, err := p.Version(o.Catalog, o.Opts.Release)
		if err != nil {
			// A missing catalog entry only matters for packages the user
			// actually selected; everything else stays skipped.
			if !enabled {
				fmt.Fprintf(o.Out, "%-50s %s  not available in this catalog\n",
					fmt.Sprintf("%s (%s)", p.Name, arch), emoji.NextTrackButton)
				results = append(results, mirror.Result{Package: p.Name, Arch: arch, Status: mirror.StatusSkipped})
				continue
			}
			o.FileLog.Error("%v", err)
			fmt.Fprintf(o.Out, "%-50s %s  no version in catalog for release %s\n",
				fmt.Sprintf("%s (%s)", p.Name, arch), emoji.CrossMark, o.Opts.Release)
			results = append(results, mirror.Result{Package: p.Name, Arch: arch, Status: mirror.StatusFailed})
			continue
		}

		res, err := o.Mirrorer.MirrorPackage(ctx, p.Name, pkgVersion, arch, enabled)
		if err != nil {
			// Without the tool installed no later package can fare better.
			if errors.Is(err, runner.ErrToolNotFound) {
				o.Log.Error("%v", err)
				return err
			}
			o.FileLog.Error("%v", err)
		}
		results = append(results, res)
	}

	return o.summarize(results)
}

func (o *ExecutorSchema) summarize(results []mirror.Result) error {
	var mirrored, failed, attempted int
	var failures []mirror.Result
	for _, r := range results {
		switch r.Status {
		case mirror.StatusSkipped:
			continue
		case mirror.StatusSuccess:
			attempted++
			mirrored++
		default:
			attempted++
			failed++
			failures = append(failures, r)
		}
	}

	fmt.Fprintln(o.Out)
	if failed == 0 {
		o.Log.Info(emoji.CheckMarkButton+" %d / %d packages mirrored successfully", mirrored, attempted)
		return nil
	}

	if err := o.saveFailures(failures); err != nil {
		o.FileLog.Error("%v", err)
	}
	o.Log.Error(emoji.CrossMark+" %d / %d packages failed to mirror - please review the logs", failed, attempted)
	return &BatchIncompleteError{Failed: failed, Total: attempted}
}

// saveFailures records one line per failed package so the errors survive
// next to the full transcript.
func (o *ExecutorSchema) saveFailures(failures []mirror.Result) error {
	name := fmt.Sprintf("mirror-errors-%s.log", o.RunID)
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()

	for _, r := range failures {
		fmt.Fprintf(f, "%s v%s (%s): status=%s exit=%d mirrored=%d/%d expected=%d\n",
			r.Package, r.Version, r.Arch, statusName(r.Status), r.ExitCode,
			r.Outcome.Mirrored, r.Outcome.Images, r.Expected)
	}
	o.FileLog.Info("failure summary written to %s", name)
	return nil
}

func statusName(s mirror.Status) string {
	switch s {
	case mirror.StatusSuccess:
		return "success"
	case mirror.StatusPartial:
		return "partial"
	case mirror.StatusUnparsed:
		return "unparsed"
	case mirror.StatusFailed:
		return "failed"
	case mirror.StatusSkipped:
		return "skipped"
	case mirror.StatusNoImages:
		return "no-images"
	default:
		return "unknown"
	}
}

// NewGenerateCmd - regenerates ImageSetConfiguration documents from CASE
// image manifests.
func NewGenerateCmd(log clog.PluggableLoggerInterface) *cobra.Command {
	var (
		caseName     string
		caseVersions []string
		archs        []string
		includeGroup string
		excludeGroup string
		childName    string
		db2Variant   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate ImageSetConfiguration documents from a CASE image manifest",
		Example: templates.Examples(`
# Regenerate the SLS configs for all architectures
mas-mirror generate --case ibm-sls --case-version 3.12.5

# Manage ICD child configuration
mas-mirror generate --case ibm-mas-manage --case-version 9.1.8 --include-group ibmmasMaximoIT --child-name icd
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := generator.New(log, afero.NewOsFs(), runner.New(log, log))
			for _, v := range caseVersions {
				for _, arch := range archs {
					_, err := gen.Generate(cmd.Context(), generator.Request{
						CaseName:     caseName,
						CaseVersion:  v,
						Arch:         arch,
						IncludeGroup: includeGroup,
						ExcludeGroup: excludeGroup,
						ChildName:    childName,
						Db2Variant:   db2Variant,
					})
					if err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&caseName, "case", "", "CASE package name (e.g. ibm-mas)")
	fs.StringSliceVar(&caseVersions, "case-version", nil, "CASE version(s) to generate")
	fs.StringSliceVar(&archs, "arch", []string{"amd64", "ppc64le", "s390x"}, "Architecture(s) to generate")
	fs.StringVar(&includeGroup, "include-group", "", "Keep only rows of this CASE group")
	fs.StringVar(&excludeGroup, "exclude-group", "", "Drop rows of this CASE group")
	fs.StringVar(&childName, "child-name", "", "Generate a child configuration under <case>-<child-name>")
	fs.StringVar(&db2Variant, "db2-variant", "", "Db2 operator variant, s11 or s12")
	// nolint: errcheck
	cmd.MarkFlagRequired("case")
	// nolint: errcheck
	cmd.MarkFlagRequired("case-version")

	return cmd
}
