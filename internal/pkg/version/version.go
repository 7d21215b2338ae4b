package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	clog "github.com/ibm-mas/image-set-configs/internal/pkg/log"
)

var (
	// commitFromGit is a constant representing the source version that
	// generated this build. It should be set during build via -ldflags.
	commitFromGit string
	// versionFromGit is a constant representing the version tag that
	// generated this build. It should be set during build via -ldflags.
	versionFromGit = "v0.0.0-unknown"
	// build date in ISO8601 format, output of $(date -u +'%Y-%m-%dT%H:%M:%SZ')
	buildDate string
)

// Version is a struct for version information
type Version struct {
	GitVersion string `json:"gitVersion"`
	GitCommit  string `json:"gitCommit,omitempty"`
	BuildDate  string `json:"buildDate,omitempty"`
	GoVersion  string `json:"goVersion"`
	Platform   string `json:"platform"`
}

type VersionOptions struct {
	Output string
}

func NewVersionCommand(log clog.PluggableLoggerInterface) *cobra.Command {
	o := VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Output version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run()
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.Output, "output", o.Output, "One of 'yaml' or 'json'.")

	return cmd
}

func (o *VersionOptions) Validate() error {
	if o.Output != "" && o.Output != "yaml" && o.Output != "json" {
		return errors.New(`--output must be 'yaml' or 'json'`)
	}
	return nil
}

func (o *VersionOptions) Run() error {
	v := Get()

	switch o.Output {
	case "":
		fmt.Fprintf(os.Stdout, "Client Version: %s\n", v.GitVersion)
	case "yaml":
		marshalled, err := yaml.Marshal(&v)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(marshalled))
	case "json":
		marshalled, err := json.MarshalIndent(&v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(marshalled))
	}
	return nil
}

func Get() Version {
	return Version{
		GitVersion: versionFromGit,
		GitCommit:  commitFromGit,
		BuildDate:  buildDate,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
