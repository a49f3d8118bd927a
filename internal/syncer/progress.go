// Defines progress reporting interfaces and implementations.

package syncer

import (
	"fmt"
	"io"
	"time"
)

// Stats contains statistics about a sync run.
type Stats struct {
	Documents      int           `json:"documents"`
	Pages          int           `json:"pages"`
	Files          int           `json:"files"`
	FilesRewritten int           `json:"filesRewritten"`
	LinksRewritten int           `json:"linksRewritten"`
	Errors         int           `json:"errors"`
	Duration       time.Duration `json:"duration"`
}

// ProgressReporter is the interface for reporting sync progress.
type ProgressReporter interface {
	OnDocument(current int, name string)
	OnRewrite(path string, links int)
	OnWarning(msg string)
	OnError(err error)
	OnComplete(stats Stats)
}

// CLIProgress writes progress to stdout/stderr.
type CLIProgress struct {
	Out io.Writer
	Err io.Writer
}

// OnDocument is called after each document is written.
func (p *CLIProgress) OnDocument(current int, name string) {
	_, _ = fmt.Fprintf(p.Out, "[%d] %s\n", current, name)
}

// OnRewrite is called for each file whose links were rewritten.
func (p *CLIProgress) OnRewrite(path string, links int) {
	_, _ = fmt.Fprintf(p.Out, "    %s: %d links\n", path, links)
}

// OnWarning is called for non-fatal issues.
func (p *CLIProgress) OnWarning(msg string) {
	_, _ = fmt.Fprintf(p.Err, "Warning: %s\n", msg)
}

// OnError is called for contained errors.
func (p *CLIProgress) OnError(err error) {
	_, _ = fmt.Fprintf(p.Err, "Error: %v\n", err)
}

// OnComplete is called when the sync finishes.
func (p *CLIProgress) OnComplete(stats Stats) {
	_, _ = fmt.Fprintf(p.Out, "\nComplete!\n")
	_, _ = fmt.Fprintf(p.Out, "---------\n")
	_, _ = fmt.Fprintf(p.Out, "Documents: %d\n", stats.Documents)
	_, _ = fmt.Fprintf(p.Out, "Pages:     %d\n", stats.Pages)
	_, _ = fmt.Fprintf(p.Out, "Rewritten: %d files, %d links\n", stats.FilesRewritten, stats.LinksRewritten)
	if stats.Errors > 0 {
		_, _ = fmt.Fprintf(p.Out, "Errors:    %d\n", stats.Errors)
	}
	_, _ = fmt.Fprintf(p.Out, "Duration:  %s\n", stats.Duration.Round(time.Millisecond))
}

// NullProgress discards all progress updates.
type NullProgress struct{}

// OnDocument is called after each document is written.
func (p *NullProgress) OnDocument(current int, name string) {}

// OnRewrite is called for each file whose links were rewritten.
func (p *NullProgress) OnRewrite(path string, links int) {}

// OnWarning is called for non-fatal issues.
func (p *NullProgress) OnWarning(msg string) {}

// OnError is called for contained errors.
func (p *NullProgress) OnError(err error) {}

// OnComplete is called when the sync finishes.
func (p *NullProgress) OnComplete(stats Stats) {}
