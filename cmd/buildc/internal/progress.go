package internal

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// progressReporter draws a bar advancing once per finished compile.
type progressReporter struct {
	bar *progressbar.ProgressBar
}

func newProgressReporter(w io.Writer, total int) *progressReporter {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("compiling"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return &progressReporter{bar: bar}
}

func (p *progressReporter) Compiled(source, output string, code int) {
	p.bar.Describe(source)
	_ = p.bar.Add(1)
}

func (p *progressReporter) Finish() {
	_ = p.bar.Finish()
}
