package consts

const (
	FileProtocol   string = "file://"
	DockerProtocol string = "docker://"

	// MirrorBinary is the oc-mirror executable driven by this tool.
	MirrorBinary string = "oc-mirror"
	// PakBinary invokes `oc ibm-pak` for CASE manifest downloads.
	PakBinary string = "oc"
)
