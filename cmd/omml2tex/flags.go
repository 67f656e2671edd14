package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// cliFlags holds command line flags, zero values mean "take it from config".
type cliFlags struct {
	config    string
	workers   int
	timeout   string
	format    string
	logFormat string
	verbose   bool
	help      bool
}

// parseFlags parses arguments without the program name and returns flags with positional arguments.
func parseFlags(args []string, output io.Writer) (*cliFlags, []string, error) {
	f := &cliFlags{}

	fs := flag.NewFlagSet("omml2tex", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		_, _ = io.WriteString(output, "Usage: omml2tex [flags] [file ...]\n\nConverts OMML math fragments to LaTeX, reads stdin when no files given.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.StringVarP(&f.config, "config", "c", "", "path to YAML config file")
	fs.IntVarP(&f.workers, "workers", "w", 0, "number of parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "time limit of a single expression, eg. 5s")
	fs.StringVarP(&f.format, "format", "f", "", "output format: plain, inline, display, equation")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every converted expression")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if f.help {
		fs.Usage()
	}

	return f, fs.Args(), nil
}
