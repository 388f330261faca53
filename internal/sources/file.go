package sources

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxLineBytes bounds a single line, excluding its trailing '\n'.
const MaxLineBytes = 4096

// ReaderSource reads newline-delimited lines from an io.Reader.
type ReaderSource struct {
	r *bufio.Reader
}

// NewReaderSource returns a ReaderSource over r. Lines longer than
// MaxLineBytes are skipped with ErrLineTooLong.
func NewReaderSource(r io.Reader) *ReaderSource {
	// One extra byte so a line of MaxLineBytes still fits with its '\n'.
	return &ReaderSource{r: bufio.NewReaderSize(r, MaxLineBytes+1)}
}

func (s *ReaderSource) Next() (string, error) {
	line, err := s.r.ReadSlice('\n')
	switch {
	case err == nil:
		return string(line), nil
	case errors.Is(err, bufio.ErrBufferFull):
		if err := s.discardLine(); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", ErrLineTooLong
	case errors.Is(err, io.EOF):
		if len(line) == 0 {
			return "", io.EOF
		}
		// Final line without a terminator.
		return string(line), nil
	default:
		return "", err
	}
}

// discardLine skips the rest of an overlong line.
func (s *ReaderSource) discardLine() error {
	for {
		_, err := s.r.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

func (s *ReaderSource) Close() error {
	return nil
}

// FileSource is a ReaderSource over an opened word list file.
type FileSource struct {
	*ReaderSource
	f *os.File
}

// OpenFile opens the word list at path. The caller must Close it.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open wordlist file %s: %w", path, err)
	}
	return &FileSource{ReaderSource: NewReaderSource(f), f: f}, nil
}

func (s *FileSource) Close() error {
	return s.f.Close()
}
