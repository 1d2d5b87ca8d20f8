package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/lanikai/candidateparser/ice"
	"github.com/lanikai/candidateparser/internal/config"
	"github.com/lanikai/candidateparser/internal/logging"
	"github.com/lanikai/candidateparser/internal/metrics"
	"github.com/lanikai/candidateparser/internal/signaling"
)

var log = logging.DefaultLogger.WithTag("main")

func main() {
	flag.Parse()

	if flagHelp {
		help(os.Stdout)
		os.Exit(0)
	}
	if flagVersion {
		printVersion(os.Stdout)
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := logging.Configure(cfg.LogLevel); err != nil {
		log.Warn("%v", err)
	}
	logging.DefaultLogger.SetColor(cfg.Color && !color.NoColor)

	if flagServe {
		if err := serve(cfg); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	var p printer
	if cfg.Format == config.FormatJSON {
		p = newJSONPrinter(os.Stdout)
	} else {
		p = newTextPrinter(os.Stdout, cfg.Color && !color.NoColor)
	}

	failed, err := parse(flag.Args(), os.Stdin, p, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// Parse the candidate arguments, or stdin when there are none. Returns the
// number of candidates that failed to parse.
func parse(args []string, stdin io.Reader, p printer, errw io.Writer) (failed int, err error) {
	if len(args) > 0 {
		return parseArgs(args, p, errw)
	}
	return parseLines(stdin, p, errw)
}

// Each argument is exactly one candidate line, blank or not.
func parseArgs(args []string, p printer, errw io.Writer) (failed int, err error) {
	for i, arg := range args {
		ok, err := parseOne(arg, fmt.Sprintf("argument %d", i+1), p, errw)
		if err != nil {
			return failed, err
		}
		if !ok {
			failed++
		}
	}
	return failed, nil
}

// Settings come from defaults, then the config file, then flags.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return cfg, err
		}
	}

	if flag.CommandLine.Changed("format") {
		cfg.Format = flagFormat
	}
	if flag.CommandLine.Changed("listen") {
		cfg.Listen = flagListen
	}
	if flag.CommandLine.Changed("log") {
		cfg.LogLevel = flagLog
	}
	if flagNoColor {
		cfg.Color = false
	}
	return cfg, errors.Wrap(cfg.Validate(), "invalid settings")
}

// Parse every non-blank line of r, one candidate per line. Lines have no
// length limit. Failures are reported on errw and counted; only I/O errors
// abort.
func parseLines(r io.Reader, p printer, errw io.Writer) (failed int, err error) {
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		line, rerr := br.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			ok, err := parseOne(line, fmt.Sprintf("line %d", n), p, errw)
			if err != nil {
				return failed, err
			}
			if !ok {
				failed++
			}
		}
		if rerr == io.EOF {
			return failed, nil
		}
		if rerr != nil {
			return failed, errors.Wrap(rerr, "read input")
		}
	}
}

// Parse and print one candidate. A parse failure is reported on errw and
// returns false; only an output error is returned as an error.
func parseOne(line, where string, p printer, errw io.Writer) (bool, error) {
	c, err := ice.ParseCandidate(line)
	if err != nil {
		fmt.Fprintf(errw, "%s: %s: %v\n", where, ice.Kind(err), err)
		return false, nil
	}
	return true, errors.Wrap(p.Print(c), "write output")
}

func serve(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := signaling.NewServer(cfg, metrics.New())
	return errors.Wrap(s.ListenAndServe(ctx), "serve")
}
