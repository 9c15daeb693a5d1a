package driver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tsavi/tlve/internal/config"
	"github.com/tsavi/tlve/internal/engine"
	"github.com/tsavi/tlve/internal/iconv"
	"github.com/tsavi/tlve/internal/level"
	"github.com/tsavi/tlve/internal/registry"
	"github.com/tsavi/tlve/internal/streambuf"
)

// debugDumpPath is the fixed file name the original always dumps to
// (buffer_error), never configurable.
const debugDumpPath = "tlve.debug"

// debugDumpLimit is the maximum number of unread bytes written to the dump
// file (buffer_error's "write_to_debug > 256" cap).
const debugDumpLimit = 256

// Options bundles the parsed CLI flags Run needs, the Go analogue of
// main()'s getopt loop result (tlve.c).
type Options struct {
	ConfigPath    string
	StructureName string
	PrintOverride string
	OutputPath    string
	Names         []string
	Expressions   []string
	ExpressionAnd bool
	StartLevel    int
	StopLevel     int
	Debug         bool
	Files         []string
}

// Run loads the configuration, opens the output destination, then processes
// every input file in turn to completion (main -> parse_rc -> execute).
func Run(opts Options) error {
	logrus.SetLevel(logrus.InfoLevel)
	if opts.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = defaultConfigPath()
	}
	cfgFile, err := os.Open(configPath)
	if err != nil {
		logrus.WithField("path", configPath).WithError(err).Error("cannot open configuration")
		return err
	}
	defer cfgFile.Close()

	res, err := config.Load(cfgFile, opts.StructureName, opts.PrintOverride)
	if err != nil {
		logrus.WithField("path", configPath).WithError(err).Error("configuration error")
		return err
	}

	out, closeOut, err := openOutput(opts.OutputPath)
	if err != nil {
		logrus.WithError(err).Error("cannot open output")
		return err
	}
	defer closeOut()

	eng := engine.New(res.Registry, res.Structure, res.Templates, out)
	eng.Out.StructureName = res.Structure.Name
	eng.Out.DefaultEncoding = localeCodeset()
	eng.Out.Recode = iconv.New()
	eng.Out.SetPrintLevels(opts.StartLevel, opts.StopLevel)
	eng.Out.AddNames(opts.Names)
	eng.Out.SetExpressionAnd(opts.ExpressionAnd)
	for _, e := range opts.Expressions {
		if err := eng.Out.AddExpression(e); err != nil {
			logrus.WithError(err).Error("invalid expression")
			return err
		}
	}

	known := ruleNameSet(res.Structure.Rules)
	if err := eng.Out.CheckNames(known); err != nil {
		logrus.WithError(err).Error("unknown name or expression target")
		return err
	}

	files := opts.Files
	if len(files) == 0 {
		files = []string{"-"}
	}

	tlveOpen := os.Getenv("TLVEOPEN")
	defaultTemplate := eng.DefaultTemplate()

	for _, name := range files {
		src := NewSource(name, tlveOpen)
		if err := src.Open(); err != nil {
			logrus.WithField("file", name).WithError(err).Error("cannot open input")
			return err
		}

		p := eng.NewFile([]io.Reader{src})
		if c, ok := src.Peek(); ok {
			eng.Buf.InjectPeek(c)
		}

		eng.Out.ClearHold()
		eng.Out.CurrentFile = displayName(name)
		if defaultTemplate != nil {
			eng.Out.PrintFileHeader(defaultTemplate)
		}

		runErr := p.Run()
		if runErr == nil {
			runErr = p.CheckPrematureEOF()
		}

		if defaultTemplate != nil {
			eng.Out.PrintFileTrailer(defaultTemplate)
		}
		src.Close()

		if runErr != nil {
			logFatalItem(runErr, eng.Stack)
			if opts.Debug {
				writeDebugDump(eng.Buf)
			}
			return runErr
		}
	}

	return nil
}

// displayName mirrors open_next_input_file's renaming of "-" to "stdin" for
// the %f directive.
func displayName(name string) string {
	if name == "-" || name == "" {
		return "stdin"
	}
	return name
}

func ruleNameSet(rules []*registry.TLVRule) func(string) bool {
	names := map[string]bool{}
	for _, r := range rules {
		names[r.Name] = true
	}
	return func(s string) bool { return names[s] }
}

// logFatalItem logs a fatal parse error with the level/stack context fields
// named in the error-handling design (§7).
func logFatalItem(err error, stack *level.Stack) {
	cur := stack.Current()
	logrus.WithFields(logrus.Fields{
		"level":     stack.Depth(),
		"remaining": cur.Remaining(),
	}).Error(err)
}

// writeDebugDump writes up to the first debugDumpLimit unread bytes of buf's
// window to tlve.debug when -d is set and a parse fails (buffer_error).
func writeDebugDump(buf *streambuf.Buffer) {
	n := buf.Unread()
	if n <= 0 {
		return
	}
	if n > debugDumpLimit {
		n = debugDumpLimit
	}

	f, err := os.OpenFile(debugDumpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		logrus.WithError(err).Error("cannot write debug dump")
		return
	}
	defer f.Close()

	if _, err := f.Write(buf.Data()[:n]); err != nil {
		logrus.WithError(err).Error("cannot write debug dump")
		return
	}
	logrus.WithField("path", debugDumpPath).Infof("first %d bytes of unprocessable data written", n)
}

// openOutput opens the run's output destination, "-" meaning stdout
// (print_list_open_output).
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("driver: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// localeCodeset approximates nl_langinfo(CODESET) without cgo: the charset
// suffix of LC_ALL/LC_CTYPE/LANG (e.g. "en_US.UTF-8" -> "UTF-8"), defaulting
// to UTF-8 when unset or unparseable.
func localeCodeset() string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		if idx := strings.IndexByte(v, '.'); idx >= 0 {
			if cs := v[idx+1:]; cs != "" {
				return cs
			}
		}
	}
	return "UTF-8"
}
