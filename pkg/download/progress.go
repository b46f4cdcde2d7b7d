package download

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// newBar returns a progress bar over n items drawn on w. A nil w hides it.
func newBar(w io.Writer, n int, description string) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
