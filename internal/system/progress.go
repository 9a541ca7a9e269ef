package system

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// ProgressFunc receives byte counts while a download streams. total is -1
// when unknown; a final call with written == total marks completion.
type ProgressFunc func(written, total int64)

// NewProgress returns a progress callback drawing a bar on w when w is a
// terminal, or nil otherwise.
func NewProgress(w io.Writer, label string) ProgressFunc {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil
	}
	return newBar(w, label)
}

func newBar(w io.Writer, label string) ProgressFunc {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	last := -1
	return func(written, total int64) {
		if total <= 0 {
			fmt.Fprintf(w, "\r%s %s", label, humanize.Bytes(uint64(written)))
			return
		}
		pct := int(written * 100 / total)
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(w, "\r%s %s %s/%s", label, bar.ViewAs(float64(written)/float64(total)),
			humanize.Bytes(uint64(written)), humanize.Bytes(uint64(total)))
		if written >= total {
			fmt.Fprintln(w)
		}
	}
}
