package errcode

const (
	// GenericErr - undifferentiated failure.
	GenericErr = 1
	// ToolNotFoundErr - a required external binary is not installed.
	ToolNotFoundErr = 2
	// BatchErr - the batch finished but one or more packages failed.
	BatchErr = 3
)
