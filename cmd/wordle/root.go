package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crosswarped.com/wordfilter"
	"crosswarped.com/wordfilter/internal/logging"
	"crosswarped.com/wordfilter/internal/sources"
	"crosswarped.com/wordfilter/pkg/constraints"
)

// EnvPrefix prefixes the environment variables that can stand in for flags,
// e.g. WORDFILTER_LIST for -l.
const EnvPrefix = "WORDFILTER"

// usageError marks errors that should be followed by the usage text.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer, log *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "wordle -c <count> -l <list> [-p <pattern>] [-x <chars>] [-k <chars>]",
		Short: "Find the words in a word list that fit known letters",
		Long: `wordle prints every word of a word list that has exactly <count> characters,
fits the pattern, contains none of the excluded characters and all of the
known ones, followed by a match count and the time taken.

The word list is a file with one word per line, or a BigQuery table given as
bigquery://project/dataset.table[?scope=<scope>&column=<column>].

Every flag can also be set from the environment as ` + EnvPrefix + `_<FLAG>.`,
		Example:       `  wordle -c 5 -p _ro__ -x a -k e -l /usr/share/dict/words`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRun: func(*cobra.Command, []string) {
			if v.GetBool("debug") {
				level.SetLevel(zapcore.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, stdout, log)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	f := cmd.Flags()
	f.IntP("count", "c", 0, fmt.Sprintf("the amount of chars (char-count) needed, up to %d", constraints.MaxWordLength))
	f.StringP("pattern", "p", "", "known arrangement of chars, _ as wildcard (_ro__ as example); must be char-count long")
	f.StringP("exclude", "x", "", "chars that must not appear in the word (-x aeiou to exclude all vowels)")
	f.StringP("known", "k", "", "chars known to exist within the word but not their position")
	f.StringP("list", "l", "", "word list file, or bigquery://project/dataset.table")
	f.IntP("workers", "w", 1, "number of goroutines matching words")
	f.Bool("debug", false, "enable debug logging")
	if err := v.BindPFlags(f); err != nil {
		log.Fatal("binding flags", zap.Error(err))
	}

	return cmd
}

func run(ctx context.Context, v *viper.Viper, stdout io.Writer, log *zap.Logger) error {
	cs, err := constraints.New(constraints.Options{
		WordLength:   v.GetInt("count"),
		Pattern:      v.GetString("pattern"),
		Excluded:     v.GetString("exclude"),
		Required:     v.GetString("known"),
		WordlistPath: v.GetString("list"),
	})
	if err != nil {
		return usageError{err}
	}
	log.Debug("constraints", zap.Stringer("constraints", cs))
	if !cs.Satisfiable() {
		log.Warn("no word can satisfy the constraints",
			zap.Int("open_positions", cs.OpenPositions()),
			zap.Stringer("known", cs.Required()))
	}

	src, err := sources.Open(ctx, cs.WordlistPath(), cs.WordLength())
	if err != nil {
		return err
	}
	defer src.Close()

	rep := wordfilter.NewTextReporter(stdout)
	res, err := wordfilter.ScanParallel(ctx, src, cs, rep, v.GetInt("workers"))
	if err != nil {
		return errors.Join(err, rep.Flush())
	}
	if res.Skipped > 0 {
		log.Warn("skipped overlong lines", zap.Int("skipped", res.Skipped), zap.Int("max_bytes", sources.MaxLineBytes))
	}
	log.Debug("scan finished",
		zap.Int("scanned", res.Scanned),
		zap.Int("matches", res.Matches),
		zap.Duration("elapsed", res.Elapsed))
	return rep.Summary(res)
}

// logLevel reads WORDFILTER_LOG_LEVEL, defaulting to info.
func logLevel() zapcore.Level {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return logging.ParseLevel(v.GetString("LOG_LEVEL"))
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	level := zap.NewAtomicLevelAt(logLevel())
	log := logging.New(stderr, level)
	defer log.Sync()

	cmd := newRootCmd(stdout, stderr, log, level)
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error(err.Error())
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprint(stderr, cmd.UsageString())
		}
		return 1
	}
	return 0
}
