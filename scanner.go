package wordfilter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"crosswarped.com/wordfilter/internal/sources"
)

// parallelBatchSize is the number of lines ScanParallel reads before fanning
// them out to workers.
const parallelBatchSize = 4096

// Matcher decides whether a single raw line is accepted.
type Matcher interface {
	Matches(word string) bool
}

// LineSource yields raw lines, returning io.EOF at the end.
type LineSource interface {
	Next() (string, error)
}

// Result summarises a scan.
type Result struct {
	// Scanned counts every line read, including skipped ones.
	Scanned int
	Matches int
	// Skipped counts lines that were too long to be read.
	Skipped int
	Elapsed time.Duration
}

// Scan reads src line by line and reports every line m accepts, in order.
// Lines that are too long are counted as skipped, any other read error
// aborts the scan.
func Scan(ctx context.Context, src LineSource, m Matcher, rep Reporter) (Result, error) {
	start := time.Now()
	var res Result
	err := scan(ctx, src, m, rep, &res)
	res.Elapsed = time.Since(start)
	return res, err
}

func scan(ctx context.Context, src LineSource, m Matcher, rep Reporter, res *Result) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok, err := next(src, res)
		if err != nil || !ok {
			return err
		}
		if !m.Matches(line) {
			continue
		}
		res.Matches++
		if err := rep.Match(line); err != nil {
			return fmt.Errorf("reporting match: %w", err)
		}
	}
}

// ScanParallel is Scan with the matching spread over workers goroutines.
// Lines are read and reported sequentially in batches, so matches are
// still reported in input order.
func ScanParallel(ctx context.Context, src LineSource, m Matcher, rep Reporter, workers int) (Result, error) {
	if workers <= 1 {
		return Scan(ctx, src, m, rep)
	}

	start := time.Now()
	var res Result
	err := scanParallel(ctx, src, m, rep, workers, &res)
	res.Elapsed = time.Since(start)
	return res, err
}

func scanParallel(ctx context.Context, src LineSource, m Matcher, rep Reporter, workers int, res *Result) error {
	batch := make([]string, 0, parallelBatchSize)
	matched := make([]bool, parallelBatchSize)

	flush := func() error {
		g, gctx := errgroup.WithContext(ctx)
		chunk := (len(batch) + workers - 1) / workers
		for lo := 0; lo < len(batch); lo += chunk {
			hi := min(lo+chunk, len(batch))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := lo; i < hi; i++ {
					matched[i] = m.Matches(batch[i])
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for i, line := range batch {
			if !matched[i] {
				continue
			}
			res.Matches++
			if err := rep.Match(line); err != nil {
				return fmt.Errorf("reporting match: %w", err)
			}
		}
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok, err := next(src, res)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		batch = append(batch, line)
		if len(batch) == parallelBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if len(batch) == 0 {
		return nil
	}
	return flush()
}

// next pulls the next readable line, skipping overlong ones. It reports false
// at the end of the source.
func next(src LineSource, res *Result) (string, bool, error) {
	for {
		line, err := src.Next()
		switch {
		case err == nil:
			res.Scanned++
			return line, true, nil
		case errors.Is(err, io.EOF):
			return "", false, nil
		case errors.Is(err, sources.ErrLineTooLong):
			res.Scanned++
			res.Skipped++
		default:
			return "", false, fmt.Errorf("reading word list: %w", err)
		}
	}
}
