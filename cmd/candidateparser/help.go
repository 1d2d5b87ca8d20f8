package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagConfig  string
	flagFormat  string
	flagNoColor bool
	flagServe   bool
	flagListen  string
	flagLog     string
	flagHelp    bool
	flagVersion bool
)

func init() {
	registerFlags(flag.CommandLine)
}

func registerFlags(fs *flag.FlagSet) {
	fs.StringVarP(&flagConfig, "config", "c", "", "JSON config file")
	fs.StringVarP(&flagFormat, "format", "f", "", "Output format: text or json")
	fs.BoolVarP(&flagNoColor, "no-color", "", false, "Disable colored output")
	fs.BoolVarP(&flagServe, "serve", "s", false, "Run the trickle signaling server")
	fs.StringVarP(&flagListen, "listen", "l", "", "HTTP listen address for --serve")
	fs.StringVarP(&flagLog, "log", "", "", "Logging directives, e.g. info,signaling=debug")

	fs.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	fs.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Parse ICE candidate lines from SDP signaling

Usage: candidateparser [OPTION]... [LINE]...

Each LINE is parsed as one "candidate:" attribute. Without LINE arguments,
candidate lines are read from standard input, one per line.

Output:
  -f, --format=FMT       Output format, text or json (default: text)
      --no-color         Disable colored output

Server:
  -s, --serve            Accept trickled candidates over a websocket
  -l, --listen=ADDR      HTTP listen address (default: :8000)

Miscellaneous:
  -c, --config=FILE      Load settings from a JSON config file
      --log=DIRECTIVES   Logging directives (default: $CANDIDATEPARSER_LOG)
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits

Exit status is 1 if any candidate line failed to parse.`

// Help information is printed and program exits
func help(w io.Writer) {
	r := color.New(color.FgRed)
	y := color.New(color.FgYellow)
	b := color.New(color.FgCyan)

	r.Fprint(w, "candidate")
	y.Fprint(w, ":")
	b.Fprintln(w, "parser")
	fmt.Fprintln(w)
	fmt.Fprintln(w, helpString)
}

// Populated via -ldflags="-X main.version=...".
var version = "dev"

func printVersion(w io.Writer) {
	fmt.Fprintln(w, "candidateparser", version)
}
