package cli

import (
	"fmt"

	"github.com/ibm-mas/image-set-configs/internal/pkg/errcode"
)

// CodeExiter is an interface implemented by errors that result in an exit code
type CodeExiter interface {
	ExitCode() int
}

// BatchIncompleteError - the batch ran to the end but some packages did
// not mirror cleanly.
type BatchIncompleteError struct {
	Failed int
	Total  int
}

func (e *BatchIncompleteError) Error() string {
	return fmt.Sprintf("%d of %d packages did not mirror cleanly", e.Failed, e.Total)
}

func (e *BatchIncompleteError) Is(err error) bool {
	_, ok := err.(*BatchIncompleteError)
	return ok
}

func (e *BatchIncompleteError) ExitCode() int {
	return errcode.BatchErr
}
