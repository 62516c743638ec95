// Package logging implements common log initialization for the library and
// its CLI.
package logging

import (
	"io"
	stdlog "log"
	"os"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// DirFlag is the common logging flag to be used to set log directory
	DirFlag = "logdir"
	// DirHelp is the help message for DirFlag
	DirHelp = "Directory to store log files"

	// FileFlag is the common logging flag to be used to set log file name
	FileFlag = "logfile"
	// FileHelp is the help message for FileFlag
	FileHelp = "Name for log file"

	// LevelFlag is the common logging flag to be used to set log level
	LevelFlag = "loglevel"
	// LevelHelp is the help message for LevelFlag
	LevelHelp = "Severity of messages to be logged"

	// YY-MM-DD HH:MM:SS.SSSSSS
	timestampFormat = "2006-01-02 15:04:05.000000"
)

var logWriter io.WriteCloser

func setLogOutput(w io.Writer) {
	log.SetOutput(w)
	stdlog.SetOutput(log.StandardLogger().Writer())
}

// Init initializes the default logrus logger. Should be called as early as
// possible when a process starts. Packages continue importing and using
// logrus directly; this only configures the standard logger.
func Init(logdir string, logfile string, level string) error {
	// Close the previously opened log file
	if logWriter != nil {
		logWriter.Close()
		logWriter = nil
	}

	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		setLogOutput(os.Stderr)
		log.WithError(err).Debug("failed to parse log level")
		return err
	}
	log.SetLevel(l)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})

	switch {
	case strings.ToLower(logfile) == "stderr" || logfile == "-":
		setLogOutput(os.Stderr)
	case strings.ToLower(logfile) == "stdout":
		setLogOutput(os.Stdout)
	default:
		logFilePath := path.Join(logdir, logfile)
		f, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			setLogOutput(os.Stderr)
			log.WithError(err).WithField("path", logFilePath).Debug("failed to open log file")
			return err
		}
		setLogOutput(f)
		logWriter = f
	}
	return nil
}
