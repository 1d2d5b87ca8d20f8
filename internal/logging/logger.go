package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fatih/color"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger struct {
	// The level at which this logger logs. Any log messages intended for a higher
	// (more verbose) log level are ignored. Guarded by out.mu once the logger is
	// in use.
	Level

	// Tag used to filter and classify log messages.
	Tag string

	out *output
}

// Destination shared by a logger and everything derived from it.
type output struct {
	// Prevents messages from different goroutines from interleaving.
	mu sync.Mutex
	w  io.Writer

	colorize bool
}

// Write to stderr by default. Colors follow fatih/color's terminal detection.
var DefaultLogger = &Logger{defaultLevel, "", &output{w: os.Stderr, colorize: !color.NoColor}}

// Override the destination for this logger and all loggers derived from it.
func (log *Logger) SetDestination(w io.Writer) {
	log.out.mu.Lock()
	log.out.w = w
	log.out.mu.Unlock()
}

// Enable or disable ANSI colors in the log header.
func (log *Logger) SetColor(enabled bool) {
	log.out.mu.Lock()
	log.out.colorize = enabled
	log.out.mu.Unlock()
}

func (log *Logger) setLevel(level Level) {
	log.out.mu.Lock()
	log.Level = level
	log.out.mu.Unlock()
}

func (log *Logger) level() Level {
	log.out.mu.Lock()
	defer log.out.mu.Unlock()
	return log.Level
}

// Derive a new logger with the given tag. Look up the level based on the tag.
// Tagged loggers are re-leveled by later calls to Configure, so derive them
// once per package rather than per request.
func (log *Logger) WithTag(tag string) *Logger {
	l := &Logger{determineLevel(tag, log.level()), tag, log.out}
	tagged.Lock()
	tagged.loggers = append(tagged.loggers, l)
	tagged.Unlock()
	return l
}

var tagged struct {
	sync.Mutex
	loggers []*Logger
}

// Derive a new logger with the given default level. This can still be overridden at
// runtime.
func (log *Logger) WithDefaultLevel(level Level) *Logger {
	return &Logger{determineLevel(log.Tag, level), log.Tag, log.out}
}

// Wrapper for []byte that implements io.Writer. Simpler and cheaper than
// bytes.Buffer.
type buffer []byte

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

// A global buffer pool, shared across all loggers.
var bufPool = sync.Pool{
	New: func() interface{} {
		return make(buffer, 0, 256)
	},
}

// Log a message at the given level. Include the file and line number from
// 'calldepth' steps up the call stack.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if level > log.level() {
		// Message is too verbose for this logger.
		return
	}

	buf := bufPool.Get().(buffer)
	defer func() { bufPool.Put(buf[:0]) }()

	// Get the caller of Error()/Warn()/Info()/etc.
	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}

	log.out.mu.Lock()
	defer log.out.mu.Unlock()

	header := fmt.Sprintf("%s %c/%s[%s:%d]",
		time.Now().Format(timestampFormat), level.letter(), log.Tag, filepath.Base(file), line)
	if log.out.colorize {
		header = level.color().Sprint(header)
	}
	buf = append(buf, header...)
	buf = append(buf, ' ')

	// Write formatted log message.
	fmt.Fprintf(&buf, format, a...)

	// Append newline if necessary.
	if n := len(buf); buf[n-1] != '\n' {
		buf = append(buf, '\n')
	}

	if _, err := log.out.w.Write(buf); err != nil {
		panic(fmt.Sprintf("Failed to log to %v: %v", log.out.w, err))
	}
}

func (log *Logger) Error(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
}

func (log *Logger) Warn(format string, a ...interface{}) {
	log.Log(Warn, 1, format, a...)
}

func (log *Logger) Info(format string, a ...interface{}) {
	log.Log(Info, 1, format, a...)
}

func (log *Logger) Debug(format string, a ...interface{}) {
	log.Log(Debug, 1, format, a...)
}

func (log *Logger) Trace(n int, format string, a ...interface{}) {
	log.Log(Level(n), 1, format, a...)
}

// Log at Error level and exit. Meant for command-line entry points only.
func (log *Logger) Fatalf(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
	os.Exit(1)
}
