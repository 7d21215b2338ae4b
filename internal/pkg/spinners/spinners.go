package spinners

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// SpinnerFiller renders the braille spinner frames shown while an
// operation with no known total is in flight.
func SpinnerFiller() mpb.BarFillerBuilder {
	return mpb.SpinnerStyle("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏", " ").PositionLeft()
}

// EmptyDecorator reserves a decorator slot without rendering anything.
func EmptyDecorator() decor.Decorator {
	return decor.Any(func(s decor.Statistics) string {
		return ""
	})
}

// BarFillerClearOnAbort drops the filler of an aborted bar so its status
// line renders without a stale bar fragment.
func BarFillerClearOnAbort() mpb.BarOption {
	return mpb.BarFillerMiddleware(func(base mpb.BarFiller) mpb.BarFiller {
		return mpb.BarFillerFunc(func(w io.Writer, st decor.Statistics) error {
			if st.Aborted {
				return nil
			}
			return base.Fill(w, st)
		})
	})
}
