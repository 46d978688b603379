package updater

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const (
	progressWidth    = 30
	progressThrottle = 100 * time.Millisecond
)

// trackProgress mirrors src into a byte progress bar on stderr. The returned
// function completes the bar. Downloads of unknown size are not tracked.
func (r *runner) trackProgress(src io.Reader, size int64, description string) (io.Reader, func()) {
	if !r.progress || size <= 0 {
		return src, func() {}
	}

	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(progressWidth),
		progressbar.OptionThrottle(progressThrottle),
	)

	return io.TeeReader(src, bar), func() {
		_ = bar.Finish()
		_, _ = fmt.Fprintln(os.Stderr)
	}
}
