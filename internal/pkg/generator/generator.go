package generator

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	yamlv2 "gopkg.in/yaml.v2"

	"github.com/ibm-mas/image-set-configs/internal/pkg/api/v1alpha2"
	"github.com/ibm-mas/image-set-configs/internal/pkg/consts"
	clog "github.com/ibm-mas/image-set-configs/internal/pkg/log"
	"github.com/ibm-mas/image-set-configs/internal/pkg/progress"
)

// CSV column layout of a CASE images manifest:
// registry,image_name,tag,digest,mtype,os,arch,variant,insecure,digest_source,image_type,groups
const (
	colRegistry = 0
	colName     = 1
	colTag      = 2
	colDigest   = 3
	colArch     = 6
	colGroups   = 11
	numColumns  = 12
)

// Request selects the CASE package and row filters for one imageset
// configuration document.
type Request struct {
	CaseName    string
	CaseVersion string
	Arch        string
	// IncludeGroup, when set, keeps only rows of that group;
	// ExcludeGroup drops rows of that group.
	IncludeGroup string
	ExcludeGroup string
	// ChildName splits a CASE into a separately mirrored child
	// configuration (e.g. manage/icd).
	ChildName string
	// Db2Variant is "s11" or "s12"; each variant excludes the other
	// generation's image tags.
	Db2Variant string
}

// EffectiveName - the package directory/file name for this request.
func (r Request) EffectiveName() string {
	switch {
	case r.Db2Variant != "":
		return r.CaseName + "-" + r.Db2Variant
	case r.ChildName != "":
		return r.CaseName + "-" + r.ChildName
	default:
		return r.CaseName
	}
}

// FetchRunnerInterface downloads a CASE manifest via `oc ibm-pak`.
type FetchRunnerInterface interface {
	RunCaptured(ctx context.Context, argv []string) (string, error)
}

// GeneratorInterface produces imageset configuration documents from CASE
// image manifests.
type GeneratorInterface interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// IscGenerator reads the CASE images CSV (fetching it first when absent),
// filters rows per the request and writes a sorted ImageSetConfiguration
// YAML under PackagesDir. The filesystem is injectable for tests.
type IscGenerator struct {
	Log         clog.PluggableLoggerInterface
	Fs          afero.Fs
	Fetcher     FetchRunnerInterface
	CasesDir    string
	PackagesDir string
	BarOutput   io.Writer
}

func New(log clog.PluggableLoggerInterface, fs afero.Fs, fetcher FetchRunnerInterface) *IscGenerator {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &IscGenerator{
		Log:         log,
		Fs:          fs,
		Fetcher:     fetcher,
		CasesDir:    filepath.Join(home, ".ibm-pak", "data", "cases"),
		PackagesDir: "packages",
		BarOutput:   os.Stdout,
	}
}

// Generate writes the configuration for one request and returns its path.
// An already existing output or an empty filtered image list is skipped,
// returning an empty path.
func (o *IscGenerator) Generate(ctx context.Context, req Request) (string, error) {
	v, err := semver.NewVersion(req.CaseVersion)
	if err != nil {
		return "", fmt.Errorf("invalid CASE version %q for %s: %w", req.CaseVersion, req.CaseName, err)
	}
	majorMinor := fmt.Sprintf("%d.%d", v.Major(), v.Minor())
	// Build metadata is dropped from file names.
	fileVersion := strings.SplitN(req.CaseVersion, "+", 2)[0]

	name := req.EffectiveName()
	outputPath := filepath.Join(o.PackagesDir, name, majorMinor, req.Arch,
		fmt.Sprintf("%s-%s-%s.yaml", name, fileVersion, req.Arch))

	if exists, _ := afero.Exists(o.Fs, outputPath); exists {
		o.Log.Info("file %s already exists, skipping generation", outputPath)
		return "", nil
	}

	csvPath := filepath.Join(o.CasesDir, req.CaseName, req.CaseVersion,
		fmt.Sprintf("%s-%s-images.csv", req.CaseName, req.CaseVersion))
	if exists, _ := afero.Exists(o.Fs, csvPath); !exists {
		if err := o.fetchCase(ctx, req); err != nil {
			return "", err
		}
	}

	images, err := o.readImages(csvPath, req)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		o.Log.Debug("no images matched for %s %s (%s)", name, req.CaseVersion, req.Arch)
		return "", nil
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })

	if err := o.Fs.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(outputPath), err)
	}
	if err := o.writeConfig(outputPath, images); err != nil {
		return "", err
	}
	o.Log.Info("generated %s with %d images", outputPath, len(images))
	return outputPath, nil
}

func (o *IscGenerator) fetchCase(ctx context.Context, req Request) error {
	argv := []string{
		consts.PakBinary, "ibm-pak", "get", req.CaseName,
		"--version", req.CaseVersion,
		"--skip-dependencies",
	}
	spinner := progress.NewSpinner(fmt.Sprintf("downloading %s v%s", req.CaseName, req.CaseVersion), o.BarOutput)
	out, err := o.Fetcher.RunCaptured(ctx, argv)
	spinner.Done(err == nil)
	if err != nil {
		if out != "" {
			o.Log.Error("%s", out)
		}
		return fmt.Errorf("fetching CASE %s %s: %w", req.CaseName, req.CaseVersion, err)
	}
	o.Log.Debug("%s", out)
	return nil
}

func (o *IscGenerator) readImages(csvPath string, req Request) ([]v1alpha2.Image, error) {
	f, err := o.Fs.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("opening images manifest: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var images []v1alpha2.Image
	header := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading images manifest: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(row) < numColumns {
			return nil, fmt.Errorf("images manifest row has %d columns, want %d", len(row), numColumns)
		}
		if !rowMatches(row, req) {
			continue
		}
		images = append(images, v1alpha2.Image{
			Name: fmt.Sprintf("%s/%s:%s@%s", row[colRegistry], row[colName], row[colTag], row[colDigest]),
		})
	}
	return images, nil
}

func rowMatches(row []string, req Request) bool {
	if excludedDb2Tag(row[colTag], req.Db2Variant) {
		return false
	}
	// Not every IBM product fills in the architecture column; an empty
	// value counts as amd64.
	arch := row[colArch]
	if arch != req.Arch && !(req.Arch == "amd64" && arch == "") {
		return false
	}
	groups := row[colGroups]
	if req.ExcludeGroup != "" && groups == req.ExcludeGroup {
		return false
	}
	if req.IncludeGroup != "" && groups != req.IncludeGroup {
		return false
	}
	return true
}

// excludedDb2Tag drops the other Db2 generation's images. Tags come in
// "s11.", "11." and "standalone-11." shapes (same for 12).
func excludedDb2Tag(tag, variant string) bool {
	var other string
	switch variant {
	case "s11":
		other = "12"
	case "s12":
		other = "11"
	default:
		return false
	}
	return strings.HasPrefix(tag, "s"+other+".") ||
		strings.HasPrefix(tag, other+".") ||
		strings.HasPrefix(tag, "standalone-"+other+".")
}

func (o *IscGenerator) writeConfig(path string, images []v1alpha2.Image) error {
	imageList := make([]yamlv2.MapSlice, 0, len(images))
	for _, img := range images {
		imageList = append(imageList, yamlv2.MapSlice{{Key: "name", Value: img.Name}})
	}
	// MapSlice keeps the document keys in their conventional order;
	// the defaults come from the typed configuration.
	base := v1alpha2.NewImageSetConfiguration()
	doc := yamlv2.MapSlice{
		{Key: "apiVersion", Value: base.APIVersion},
		{Key: "kind", Value: base.Kind},
		{Key: "archiveSize", Value: base.ArchiveSize},
		{Key: "mirror", Value: yamlv2.MapSlice{
			{Key: "additionalImages", Value: imageList},
		}},
	}
	data, err := yamlv2.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", path, err)
	}
	if err := afero.WriteFile(o.Fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
