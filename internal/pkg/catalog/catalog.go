package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"strings"

	"github.com/ibm-mas/image-set-configs/internal/pkg/parser"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// Catalog maps package catalog keys to concrete CASE versions for one
// published MAS catalog (identified as v9-<date>-<arch>). Dependency keys
// hold a single version; application keys hold one version per release
// track.
type Catalog struct {
	ID      string
	entries map[string]interface{}
}

// GetCatalog loads the embedded catalog with the given identifier.
func GetCatalog(id string) (*Catalog, error) {
	data, err := catalogFS.ReadFile(fmt.Sprintf("catalogs/%s.yaml", id))
	if err != nil {
		return nil, fmt.Errorf("unknown catalog %q: %w", id, err)
	}
	entries, err := parser.ParseYamlReader[map[string]interface{}](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %q: %w", id, err)
	}
	return &Catalog{ID: id, entries: entries}, nil
}

// Arch - the architecture encoded in the catalog identifier.
func (c *Catalog) Arch() string {
	parts := strings.Split(c.ID, "-")
	return parts[len(parts)-1]
}

// VersionFor resolves a catalog key to a version. Dependency keys such
// as sls_version carry the version directly; application keys carry a
// map keyed by release track (e.g. "9.1.x").
func (c *Catalog) VersionFor(key, release string) (string, error) {
	raw, ok := c.entries[key]
	if !ok {
		return "", fmt.Errorf("catalog %s has no entry %q", c.ID, key)
	}
	switch v := raw.(type) {
	case string:
		return v, nil
	case map[string]interface{}:
		rv, ok := v[release]
		if !ok {
			return "", fmt.Errorf("catalog %s entry %q has no version for release %s", c.ID, key, release)
		}
		s, ok := rv.(string)
		if !ok {
			return "", fmt.Errorf("catalog %s entry %q release %s is not a version string", c.ID, key, release)
		}
		return s, nil
	default:
		return "", fmt.Errorf("catalog %s entry %q has an unexpected shape", c.ID, key)
	}
}
