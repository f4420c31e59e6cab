package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/2beens/fittrack/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const sentryFlushTimeout = 2 * time.Second

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the global logrus logger. The returned func flushes sentry and closes
// the log file, call it on shutdown.
func Setup(params LoggerSetupParams) func() {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	var closers []func()
	if params.SentryEnabled {
		err := sentry.Init(sentry.ClientOptions{
			Environment:      params.Environment,
			Dsn:              params.SentryDSN,
			TracesSampleRate: 1.0,
			ServerName:       params.SentryServerName,
		})
		if err != nil {
			logrus.Errorf("sentry.Init: %s", err)
		} else {
			logrus.AddHook(NewSentryHook(sentry.CurrentHub(), []logrus.Level{
				logrus.PanicLevel,
				logrus.FatalLevel,
				logrus.ErrorLevel,
			}))
			closers = append(closers, func() { sentry.Flush(sentryFlushTimeout) })
			logrus.Infoln("sentry set up successfully")
		}
	}

	logrus.SetLevel(GetLevel(params.LogLevel))

	output, closeOutput := Output(params.LogFileName, params.LogToStdout)
	logrus.SetOutput(output)
	if closeOutput != nil {
		closers = append(closers, closeOutput)
	}

	return func() {
		for _, c := range closers {
			c()
		}
	}
}

// Output builds the log destination: stdout only when no file is given, otherwise a rotated
// file, optionally mirrored to stdout.
func Output(logFileName string, toStdout bool) (io.Writer, func()) {
	if logFileName == "" {
		return os.Stdout, nil
	}

	if !strings.HasSuffix(logFileName, ".log") {
		logFileName += ".log"
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:  logFileName,
		MaxSize:   50, // megabytes
		LocalTime: false,
		Compress:  true,
	}
	closeFile := func() {
		if err := lumberJackLogger.Close(); err != nil {
			logrus.Errorf("close log file: %s", err)
		}
	}

	if toStdout {
		return pkg.NewCombinedWriter(os.Stdout, lumberJackLogger), closeFile
	}
	return lumberJackLogger, closeFile
}

// GetLevel parses a level name, falling back to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}
