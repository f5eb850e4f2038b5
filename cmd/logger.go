package routecmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the invocation logger. Logs go to stderr so stdout
// stays clean for statement results and descriptors.
func newLogger(cmd *cobra.Command) *zap.Logger {
	level := zapcore.WarnLevel
	if raw, err := cmd.Flags().GetString("log-level"); err == nil {
		if parsed, err := zapcore.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	log, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log.With(zap.String("invocation", uuid.NewString()))
}
