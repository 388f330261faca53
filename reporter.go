package wordfilter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reporter receives accepted lines and the final summary.
type Reporter interface {
	Match(line string) error
	Summary(res Result) error
}

// TextReporter writes matches verbatim, one per line, followed by a summary
// line. Output is buffered until Summary or Flush.
type TextReporter struct {
	w *bufio.Writer
}

// NewTextReporter returns a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: bufio.NewWriter(w)}
}

// Match writes line as read. A line without a terminator (the last line of
// a file, or a word from a non-file source) gets one so that matches never
// run together.
func (r *TextReporter) Match(line string) error {
	if _, err := r.w.WriteString(line); err != nil {
		return err
	}
	if !strings.HasSuffix(line, "\n") {
		return r.w.WriteByte('\n')
	}
	return nil
}

func (r *TextReporter) Summary(res Result) error {
	if _, err := fmt.Fprintf(r.w, "total time to find %d word(s): %.2f Seconds\n", res.Matches, res.Elapsed.Seconds()); err != nil {
		return err
	}
	return r.Flush()
}

func (r *TextReporter) Flush() error {
	return r.w.Flush()
}

// ErrLimitReached is returned by CollectingReporter.Match once it holds
// Limit words and another match arrives. It stops the scan.
var ErrLimitReached = errors.New("match limit reached")

// CollectingReporter keeps matches in memory, without their terminators.
// A positive Limit caps the number of words kept.
type CollectingReporter struct {
	Words  []string
	Limit  int
	Result Result
}

func (r *CollectingReporter) Match(line string) error {
	if r.Limit > 0 && len(r.Words) >= r.Limit {
		return ErrLimitReached
	}
	line = strings.TrimSuffix(line, "\n")
	r.Words = append(r.Words, strings.TrimSuffix(line, "\r"))
	return nil
}

func (r *CollectingReporter) Summary(res Result) error {
	r.Result = res
	return nil
}
