package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var b bytes.Buffer
	log := &Logger{Level: level, Tag: "test", out: &output{w: &b}}
	return log, &b
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]Level{
		"e": Error, "ERROR": Error, "warn": Warn, "I": Info, "debug": Debug, "trace": MaxLevel, "5": Level(5), "-2": Error,
	} {
		level, err := ParseLevel(s)
		assert.NoError(t, err, s)
		assert.Equal(t, want, level, s)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
	_, err = ParseLevel("10")
	assert.Error(t, err)
}

func TestLevelFormatting(t *testing.T) {
	assert.Equal(t, "Warn", Warn.String())
	assert.Equal(t, "7", Level(7).String())
	assert.Equal(t, byte('E'), Error.letter())
	assert.Equal(t, byte('D'), Debug.letter())
	assert.Equal(t, byte('7'), Level(7).letter())
}

func TestLogFiltersByLevel(t *testing.T) {
	log, b := newTestLogger(Info)

	log.Debug("hidden")
	assert.Empty(t, b.String())

	log.Warn("rejected %d candidates", 3)
	out := b.String()
	assert.Contains(t, out, " W/test[logger_test.go:")
	assert.Contains(t, out, "] rejected 3 candidates\n")
}

func TestLogNewline(t *testing.T) {
	log, b := newTestLogger(Info)
	log.Info("line\n")
	assert.Equal(t, 1, bytes.Count(b.Bytes(), []byte("\n")))
}

func TestWithTagSharesOutput(t *testing.T) {
	saveConfig(t)
	log, b := newTestLogger(Debug)
	child := log.WithTag("child")

	child.Info("hello")
	assert.Contains(t, b.String(), "I/child[")

	var other bytes.Buffer
	child.SetDestination(&other)
	log.Info("moved")
	assert.Contains(t, other.String(), "moved")
}

// Restore the package-level configuration, and forget any tagged loggers the
// test derives, when the test ends.
func saveConfig(t *testing.T) {
	saved, savedTags, savedDefault := defaultLevel, tagLevels, DefaultLogger.level()

	tagged.Lock()
	loggers := append([]*Logger(nil), tagged.loggers...)
	tagged.Unlock()
	levels := make([]Level, len(loggers))
	for i, l := range loggers {
		levels[i] = l.level()
	}

	t.Cleanup(func() {
		defaultLevel, tagLevels = saved, savedTags
		DefaultLogger.setLevel(savedDefault)

		tagged.Lock()
		tagged.loggers = loggers
		tagged.Unlock()
		for i, l := range loggers {
			l.setLevel(levels[i])
		}
	})
}

func TestConfigure(t *testing.T) {
	saveConfig(t)

	derived := DefaultLogger.WithTag("signaling")
	require.NoError(t, Configure("warn,signaling=debug, metrics=3"))
	assert.Equal(t, Debug, derived.level())
	assert.Equal(t, Warn, defaultLevel)
	assert.Equal(t, Debug, determineLevel("signaling", Info))
	assert.Equal(t, Level(3), determineLevel("metrics", Info))
	assert.Equal(t, Info, determineLevel("other", Info))

	err := Configure("signaling=bogus,signaling=error")
	assert.EqualError(t, err, "invalid directive 'signaling=bogus': invalid logging level: bogus")
	assert.Equal(t, Error, derived.level())
}

func TestConfigureRestoresTaggedLoggers(t *testing.T) {
	tagged.Lock()
	n := len(tagged.loggers)
	tagged.Unlock()

	t.Run("derive", func(t *testing.T) {
		saveConfig(t)
		DefaultLogger.WithTag("scratch")
		require.NoError(t, Configure("scratch=debug"))
	})

	tagged.Lock()
	defer tagged.Unlock()
	assert.Len(t, tagged.loggers, n)
}

func TestConfigureWhileLogging(t *testing.T) {
	saveConfig(t)
	log, b := newTestLogger(Info)
	tagged.Lock()
	tagged.loggers = append(tagged.loggers, log)
	tagged.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			log.Info("candidate %d", i)
		}
	}()
	for i := 0; i < 100; i++ {
		Configure("test=debug")
	}
	<-done
	assert.Equal(t, Debug, log.level())
	assert.NotEmpty(t, b.String())
}
