package config

import (
	"encoding/json"
	"io/ioutil"

	"github.com/pkg/errors"
)

// Output formats for parsed candidates.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds settings for the candidateparser command and its signaling
// server. Zero-valued fields in a config file keep their defaults.
type Config struct {
	// Address of the HTTP server, e.g. ":8000".
	Listen string `json:"listen"`

	// Path of the trickle websocket endpoint.
	WebsocketPath string `json:"wsPath"`

	// Path of the Prometheus endpoint.
	MetricsPath string `json:"metricsPath"`

	// Logging directives, see logging.Configure. Applied on top of the
	// CANDIDATEPARSER_LOG environment variable.
	LogLevel string `json:"logLevel"`

	// Output format, "text" or "json".
	Format string `json:"format"`

	// Colorize text output and log headers.
	Color bool `json:"color"`
}

func Default() Config {
	return Config{
		Listen:        ":8000",
		WebsocketPath: "/ws",
		MetricsPath:   "/metrics",
		Format:        FormatText,
		Color:         true,
	}
}

// Load reads a JSON config file on top of the defaults.
func Load(path string) (Config, error) {
	c := Default()

	d, err := ioutil.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "read config")
	}
	if err := json.Unmarshal(d, &c); err != nil {
		return c, errors.Wrapf(err, "parse config %s", path)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return errors.Errorf("unknown output format '%s'", c.Format)
	}
	if c.WebsocketPath == "" || c.WebsocketPath[0] != '/' {
		return errors.Errorf("invalid websocket path '%s'", c.WebsocketPath)
	}
	if c.MetricsPath == "" || c.MetricsPath[0] != '/' {
		return errors.Errorf("invalid metrics path '%s'", c.MetricsPath)
	}
	if c.WebsocketPath == c.MetricsPath {
		return errors.Errorf("websocket and metrics paths must differ")
	}
	return nil
}
