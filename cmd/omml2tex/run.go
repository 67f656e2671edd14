package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/eolymp/go-omml"
	"github.com/eolymp/go-omml/internal/config"
)

// Sentinel errors of the command.
var (
	ErrNoInput          = errors.New("no math found in input")
	ErrReadInput        = errors.New("failed to read input")
	ErrConversionFailed = errors.New("some expressions were not converted")
)

// run executes the command, args do not include the program name.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags, files, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if flags.help {
		return nil
	}

	cfg, err := config.Load(flags.config)
	if err != nil {
		return err
	}

	override(cfg, flags)

	if err := cfg.Validate(); err != nil {
		return err
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	fragments, err := readFragments(files, stdin)
	if err != nil {
		return err
	}

	if len(fragments) == 0 {
		return ErrNoInput
	}

	logger := newLogger(cfg.Log, stderr)
	logger.Debug("converting", slog.Int("expressions", len(fragments)), slog.Int("workers", omml.ResolveWorkers(cfg.Workers)))

	results := omml.ConvertBatch(ctx, fragments,
		omml.WithWorkers(cfg.Workers),
		omml.WithTimeout(timeout),
		omml.WithLogger(logger),
	)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}

		if _, err := fmt.Fprintln(stdout, format(cfg.Output.Format, r.LaTeX)); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrConversionFailed, failed, len(results))
	}

	return nil
}

// override applies explicitly set flags on top of config
func override(cfg *config.Config, flags *cliFlags) {
	if flags.workers != 0 {
		cfg.Workers = flags.workers
	}

	if flags.timeout != "" {
		cfg.Timeout = flags.timeout
	}

	if flags.format != "" {
		cfg.Output.Format = flags.format
	}

	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}

	if flags.verbose {
		cfg.Log.Level = "debug"
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == config.LogJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// readFragments reads files, or stdin when there are none, and cuts math expressions out of them
func readFragments(files []string, stdin io.Reader) ([]omml.Fragment, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}

		return fragmentsOf("stdin", data), nil
	}

	var fragments []omml.Fragment
	for _, name := range files {
		data, err := os.ReadFile(name) // #nosec G304 -- input path is user-provided
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
		}

		fragments = append(fragments, fragmentsOf(name, data)...)
	}

	return fragments, nil
}

// fragmentsOf splits the input into expressions, input which can't be split is taken as a single fragment
// and gets reported by the converter
func fragmentsOf(id string, data []byte) []omml.Fragment {
	sources, err := omml.Split(data)
	if err != nil || len(sources) == 0 {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		return []omml.Fragment{{ID: id, Source: string(data)}}
	}

	if len(sources) == 1 {
		return []omml.Fragment{{ID: id, Source: sources[0]}}
	}

	fragments := make([]omml.Fragment, len(sources))
	for i, source := range sources {
		fragments[i] = omml.Fragment{ID: id + "#" + strconv.Itoa(i+1), Source: source}
	}

	return fragments
}

// format wraps LaTeX of an expression according to the output format
func format(name, latex string) string {
	if latex == "" {
		return ""
	}

	switch name {
	case config.FormatInline:
		return "$" + latex + "$"
	case config.FormatDisplay:
		return "$$" + latex + "$$"
	case config.FormatEquation:
		return `\begin{equation} ` + latex + ` \end{equation}`
	default:
		return latex
	}
}
