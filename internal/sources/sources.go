// Package sources supplies candidate words to the scanner, one raw line at a
// time, from files, BigQuery tables or memory.
package sources

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrLineTooLong is returned by Next for a line longer than MaxLineBytes.
// The offending line has been consumed; the next call continues after it.
var ErrLineTooLong = errors.New("line exceeds maximum length")

// LineSource yields raw candidate lines. Next returns io.EOF once the source
// is exhausted. Lines keep their trailing terminator when the source has one.
type LineSource interface {
	Next() (string, error)
	Close() error
}

// Open selects a LineSource for path. "bigquery://" URIs are read from
// BigQuery, anything else is opened as a file. A positive wordLength lets
// sources that can filter at the origin skip words of any other length.
func Open(ctx context.Context, path string, wordLength int) (LineSource, error) {
	if strings.HasPrefix(path, bigQueryScheme+"://") {
		opts, err := ParseBigQueryURI(path)
		if err != nil {
			return nil, err
		}
		if opts.WordLength == 0 {
			opts.WordLength = wordLength
		}
		src, err := OpenBigQuery(ctx, opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	src, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// SliceSource serves lines from memory.
type SliceSource struct {
	lines []string
	next  int
}

// FromLines returns a SliceSource serving lines in order, as given.
func FromLines(lines ...string) *SliceSource {
	return &SliceSource{lines: lines}
}

func (s *SliceSource) Next() (string, error) {
	if s.next >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.next]
	s.next++
	return line, nil
}

func (s *SliceSource) Close() error {
	return nil
}

// MultiSource reads its sources one after another, closing each as it is
// exhausted.
type MultiSource struct {
	srcs []LineSource
}

func Concat(srcs ...LineSource) *MultiSource {
	return &MultiSource{srcs: srcs}
}

func (m *MultiSource) Next() (string, error) {
	for len(m.srcs) > 0 {
		line, err := m.srcs[0].Next()
		if !errors.Is(err, io.EOF) {
			return line, err
		}
		if err := m.srcs[0].Close(); err != nil {
			return "", err
		}
		m.srcs = m.srcs[1:]
	}
	return "", io.EOF
}

func (m *MultiSource) Close() error {
	var errs []error
	for _, s := range m.srcs {
		errs = append(errs, s.Close())
	}
	m.srcs = nil
	return errors.Join(errs...)
}
