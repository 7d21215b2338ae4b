package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/ibm-mas/image-set-configs/internal/pkg/api/v1alpha2"
)

var (
	errMissingMirrorStanza = errors.New("configuration missing the `mirror` stanza")
	errMissingKind         = errors.New("configuration missing `kind`")
)

// ReadConfig opens an imageset configuration file at the given path
// and loads it into a v1alpha2.ImageSetConfiguration instance.
func ReadConfig(configPath string) (v1alpha2.ImageSetConfiguration, error) {
	var cfg v1alpha2.ImageSetConfiguration

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return cfg, fmt.Errorf("could not read config: %w", err)
	}

	var configMap map[string]any
	if err := yaml.UnmarshalStrict(data, &configMap); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	configKind, ok := configMap["kind"]
	if !ok {
		return cfg, errMissingKind
	}
	if configKind != v1alpha2.ImageSetConfigurationKind {
		return cfg, fmt.Errorf("cannot parse %q as %q", configKind, v1alpha2.ImageSetConfigurationKind)
	}
	if _, ok := configMap["mirror"]; !ok {
		return cfg, errMissingMirrorStanza
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// CountAdditionalImages returns the number of entries under
// mirror.additionalImages in the configuration at path. This pre-flight
// count sizes the progress bar; it is independent of the count the
// mirror tool later reports in its output.
func CountAdditionalImages(configPath string) (int, error) {
	cfg, err := ReadConfig(configPath)
	if err != nil {
		return 0, err
	}
	return len(cfg.Mirror.AdditionalImages), nil
}
