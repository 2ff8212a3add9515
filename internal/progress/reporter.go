// Package progress reports upload progress either as an interactive
// byte-count bar or as plain lines for CI logs.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives upload progress for one file.
type Reporter interface {
	Start(name string, total int64)
	Update(sent int64)
	Finish()
}

// NewReporter returns a TerminalReporter in interactive terminals, or
// a CIReporter when the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a byte-count progress bar.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(name string, total int64) {
	r.bar = progressbar.DefaultBytes(total, "Uploading "+name)
}

func (r *TerminalReporter) Update(sent int64) {
	if r.bar != nil {
		_ = r.bar.Set64(sent)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints coarse line-by-line progress suitable for CI logs.
type CIReporter struct {
	name     string
	total    int64
	lastTick int64
}

func (r *CIReporter) Start(name string, total int64) {
	r.name = name
	r.total = total
	r.lastTick = -1
	fmt.Fprintf(os.Stderr, "Uploading %s (%d bytes)\n", name, total)
}

// Update prints at most one line per 10%% step.
func (r *CIReporter) Update(sent int64) {
	if r.total <= 0 {
		return
	}
	tick := sent * 10 / r.total
	if tick != r.lastTick {
		r.lastTick = tick
		fmt.Fprintf(os.Stderr, "%s: %d%%\n", r.name, tick*10)
	}
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(os.Stderr, "%s: upload complete\n", r.name)
}
