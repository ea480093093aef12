package plog

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	//nolint:depguard // Wrapper for Zap
	"go.uber.org/zap"

	//nolint:depguard // Wrapper for Zap
	"go.uber.org/zap/zapcore"

	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/sanitize"
)

type PipelineLogger struct {

	// Level is the logging level to use for output
	Level zapcore.Level

	// Format is the logging format to use for output: json or console
	Format string

	// Color is whether to use color in the console output
	Color bool

	// Zap is the Zap logger instance
	Zap   *zap.Logger
	Sugar *zap.SugaredLogger

	sink io.Writer
}

// LoggerOption defines a type of function to configures the Logger.
type LoggerOption func(*PipelineLogger) error

// NewLogger creates a new Logger.
func NewLogger(opts ...LoggerOption) (*PipelineLogger, error) {
	// Defaults
	c := &PipelineLogger{
		Level:  zapcore.WarnLevel,
		Format: "console",
		sink:   os.Stderr,
	}
	// Set options
	for _, opt := range opts {
		err := opt(c)
		if err != nil {
			return c, err
		}
	}

	err := c.Initialize()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func WithColor(enabled bool) LoggerOption {
	return func(c *PipelineLogger) error {
		c.Color = enabled
		return nil
	}
}

// WithOutput sends log lines to w instead of stderr.
func WithOutput(w io.Writer) LoggerOption {
	return func(c *PipelineLogger) error {
		c.sink = w
		return nil
	}
}

func WithLevel(level string) LoggerOption {
	return func(c *PipelineLogger) error {
		if level == "" {
			return nil
		}
		l, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return err
		}
		c.Level = l
		return nil
	}
}

func WithLevelFromEnvironment() LoggerOption {
	return func(c *PipelineLogger) error {
		// Get the desired logging level from the SINGULARITY_PIPELINE_LOG_LEVEL environment variable
		logLevelStr := strings.ToLower(os.Getenv(constants.EnvLogLevel))
		if logLevelStr == "" {
			// Default to warn
			logLevelStr = "warn"
		}

		logLevel, err := zapcore.ParseLevel(logLevelStr)
		if err == nil {
			c.Level = logLevel
		}
		return nil
	}
}

func WithFormatFromEnvironment() LoggerOption {
	return func(c *PipelineLogger) error {
		logFormat := strings.ToLower(os.Getenv(constants.EnvLogFormat))
		switch logFormat {
		case "json", "console":
			c.Format = logFormat
		}
		return nil
	}
}

func (c *PipelineLogger) Initialize() error {

	// Configure the logging output
	var encoder zapcore.Encoder
	if c.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		if c.Color {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(ec)
	}

	atomicLevel := zap.NewAtomicLevelAt(c.Level)
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(c.sink)), atomicLevel)

	c.Zap = zap.New(core)
	c.Sugar = c.Zap.Sugar()
	return nil
}

func (c *PipelineLogger) Sync() error {
	return c.Zap.Sync()
}

func (c *PipelineLogger) Error(msg string, keysAndValues ...interface{}) {
	c.Sugar.Errorw(msg, sanitize.SanitizeLogEntries(keysAndValues)...)
}

func (c *PipelineLogger) Warn(msg string, keysAndValues ...interface{}) {
	c.Sugar.Warnw(msg, sanitize.SanitizeLogEntries(keysAndValues)...)
}

func (c *PipelineLogger) Info(msg string, keysAndValues ...interface{}) {
	c.Sugar.Infow(msg, sanitize.SanitizeLogEntries(keysAndValues)...)
}

func (c *PipelineLogger) Debug(msg string, keysAndValues ...interface{}) {
	c.Sugar.Debugw(msg, sanitize.SanitizeLogEntries(keysAndValues)...)
}

// ExecutionLogger writes one JSON object per line to path, creating the parent directory.
func ExecutionLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.Sampling = nil
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
