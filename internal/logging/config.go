package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const envVar = "CANDIDATEPARSER_LOG"

type tagLevel struct {
	tag   string
	level Level
}

var tagLevels []tagLevel

func init() {
	if err := Configure(os.Getenv(envVar)); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", envVar, err)
	}
}

// Configure parses comma-separated "tag=level" directives. A directive without
// "tag=" sets the default level. Valid directives are applied even if others
// fail; the first failure is returned. Meant to be called at startup, before
// logging begins.
func Configure(directives string) error {
	var first error
	for _, d := range strings.Split(directives, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		v := strings.SplitN(d, "=", 2)
		level, err := ParseLevel(v[len(v)-1])
		if err != nil {
			if first == nil {
				first = errors.Errorf("invalid directive '%s': %v", d, err)
			}
			continue
		}
		if len(v) == 1 {
			defaultLevel = level
			DefaultLogger.setLevel(level)
		} else {
			tagLevels = append(tagLevels, tagLevel{v[0], level})
		}
	}

	tagged.Lock()
	for _, l := range tagged.loggers {
		l.setLevel(determineLevel(l.Tag, defaultLevel))
	}
	tagged.Unlock()

	return first
}

func determineLevel(tag string, fallback Level) Level {
	// Later directives take precedence.
	for i := len(tagLevels) - 1; i >= 0; i-- {
		if tagLevels[i].tag == tag {
			return tagLevels[i].level
		}
	}
	return fallback
}
