package catalog

// PackageSpec describes one mirrorable CASE package: the CLI flag that
// enables it, the catalog key its version is looked up under and the
// display group it is reported in.
type PackageSpec struct {
	Group       string
	Flag        string
	Name        string
	CatalogKey  string
	Description string
}

// Packages is the full set of mirrorable packages, in display order.
// The table drives both the flag surface and the batch loop.
var Packages = []PackageSpec{
	{Group: "Dependencies", Flag: "sls", Name: "ibm-sls", CatalogKey: "sls_version", Description: "Suite License Service"},
	{Group: "Dependencies", Flag: "tsm", Name: "ibm-truststore-mgr", CatalogKey: "tsm_version", Description: "Trust Store Manager"},

	{Group: "MAS", Flag: "core", Name: "ibm-mas", CatalogKey: "mas_core_version", Description: "Core"},
	{Group: "MAS", Flag: "assist", Name: "ibm-mas-assist", CatalogKey: "mas_assist_version", Description: "Assist"},
	{Group: "MAS", Flag: "iot", Name: "ibm-mas-iot", CatalogKey: "mas_iot_version", Description: "IoT"},
	{Group: "MAS", Flag: "facilities", Name: "ibm-mas-facilities", CatalogKey: "mas_facilities_version", Description: "Facilities"},
	{Group: "MAS", Flag: "manage", Name: "ibm-mas-manage", CatalogKey: "mas_manage_version", Description: "Manage"},
	{Group: "MAS", Flag: "monitor", Name: "ibm-mas-monitor", CatalogKey: "mas_monitor_version", Description: "Monitor"},
	{Group: "MAS", Flag: "predict", Name: "ibm-mas-predict", CatalogKey: "mas_predict_version", Description: "Predict"},
	{Group: "MAS", Flag: "optimizer", Name: "ibm-mas-optimizer", CatalogKey: "mas_optimizer_version", Description: "Optimizer"},
	{Group: "MAS", Flag: "visualinspection", Name: "ibm-mas-visualinspection", CatalogKey: "mas_visualinspection_version", Description: "Visual Inspection"},
}

// dependencyKeys are looked up directly rather than per release track.
var dependencyKeys = map[string]bool{
	"sls_version": true,
	"tsm_version": true,
}

// Version resolves the package's version from the catalog, honoring the
// direct-versus-release-keyed split.
func (p PackageSpec) Version(c *Catalog, release string) (string, error) {
	if dependencyKeys[p.CatalogKey] {
		return c.VersionFor(p.CatalogKey, "")
	}
	return c.VersionFor(p.CatalogKey, release)
}
