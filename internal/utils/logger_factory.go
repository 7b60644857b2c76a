package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	consoleTimeLayoutConstant            = "15:04:05"
	defaultLogFileMaxSizeConstant        = 10
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LogFileConfiguration enables a size-rotated JSON log file alongside the terminal output.
// An empty Path disables the file.
type LogFileConfiguration struct {
	Path           string
	MaxSizeMB      int
	MaxBackups     int
	MaxAgeDays     int
	CompressBackup bool
}

// LoggerOutputs groups the loggers built for a single invocation.
// DiagnosticLogger receives structured records; ConsoleLogger renders
// short human-readable lines and equals DiagnosticLogger in structured mode.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	terminalWriter io.Writer
}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// NewLoggerFactory constructs a logger factory writing to standard error.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{terminalWriter: os.Stderr}
}

// NewLoggerFactoryWithWriter constructs a logger factory writing terminal output to writer.
func NewLoggerFactoryWithWriter(writer io.Writer) *LoggerFactory {
	if writer == nil {
		writer = os.Stderr
	}
	return &LoggerFactory{terminalWriter: writer}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	outputs, creationError := factory.CreateLoggerOutputs(requestedLogLevel, requestedLogFormat, LogFileConfiguration{})
	if creationError != nil {
		return nil, creationError
	}
	return outputs.DiagnosticLogger, nil
}

// CreateLoggerOutputs builds the diagnostic and console loggers, teeing every
// diagnostic record into a rotated log file when fileConfiguration.Path is set.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat, fileConfiguration LogFileConfiguration) (LoggerOutputs, error) {
	zapLogLevel, levelExists := logLevelMapping[LogLevel(strings.ToLower(strings.TrimSpace(string(requestedLogLevel))))]
	if !levelExists {
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	normalizedFormat := LogFormat(strings.ToLower(strings.TrimSpace(string(requestedLogFormat))))
	if normalizedFormat != LogFormatStructured && normalizedFormat != LogFormatConsole {
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	levelEnabler := zap.NewAtomicLevelAt(zapLogLevel)
	terminalSink := newTerminalWriteSyncer(factory.writer())

	var terminalCore zapcore.Core
	if normalizedFormat == LogFormatStructured {
		terminalCore = zapcore.NewCore(zapcore.NewJSONEncoder(structuredEncoderConfiguration()), terminalSink, levelEnabler)
	} else {
		terminalCore = zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfiguration()), terminalSink, levelEnabler)
	}

	diagnosticCore := terminalCore
	fileCore := buildFileCore(fileConfiguration, levelEnabler)
	if fileCore != nil {
		diagnosticCore = zapcore.NewTee(terminalCore, fileCore)
	}

	diagnosticLogger := zap.New(diagnosticCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if normalizedFormat == LogFormatStructured {
		return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: diagnosticLogger}, nil
	}

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(humanReadableEncoderConfiguration()), terminalSink, levelEnabler)
	if fileCore != nil {
		consoleCore = zapcore.NewTee(consoleCore, fileCore)
	}

	return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: zap.New(consoleCore)}, nil
}

func (factory *LoggerFactory) writer() io.Writer {
	if factory == nil || factory.terminalWriter == nil {
		return os.Stderr
	}
	return factory.terminalWriter
}

func buildFileCore(fileConfiguration LogFileConfiguration, levelEnabler zapcore.LevelEnabler) zapcore.Core {
	trimmedPath := strings.TrimSpace(fileConfiguration.Path)
	if len(trimmedPath) == 0 {
		return nil
	}

	maxSize := fileConfiguration.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultLogFileMaxSizeConstant
	}

	rotatingWriter := &lumberjack.Logger{
		Filename:   trimmedPath,
		MaxSize:    maxSize,
		MaxBackups: fileConfiguration.MaxBackups,
		MaxAge:     fileConfiguration.MaxAgeDays,
		Compress:   fileConfiguration.CompressBackup,
	}

	return zapcore.NewCore(zapcore.NewJSONEncoder(structuredEncoderConfiguration()), zapcore.AddSync(rotatingWriter), levelEnabler)
}

func structuredEncoderConfiguration() zapcore.EncoderConfig {
	configuration := zap.NewProductionEncoderConfig()
	configuration.EncodeTime = zapcore.ISO8601TimeEncoder
	return configuration
}

func consoleEncoderConfiguration() zapcore.EncoderConfig {
	configuration := zap.NewDevelopmentEncoderConfig()
	configuration.EncodeTime = zapcore.TimeEncoderOfLayout(consoleTimeLayoutConstant)
	configuration.EncodeLevel = zapcore.CapitalLevelEncoder
	return configuration
}

func humanReadableEncoderConfiguration() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}
