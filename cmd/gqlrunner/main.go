// Command gqlrunner compiles GraphQL schemas and runs operations against
// fixture data with default field resolution.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	serverlessgql "github.com/hanpama/serverlessgql"
	logging "github.com/hanpama/serverlessgql/internal/logging"
	otel "github.com/hanpama/serverlessgql/internal/otel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	logLevel     string
	otelEndpoint string
	otelService  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "gqlrunner",
		Short:         "Compile GraphQL schemas and run operations against fixtures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.otelEndpoint, "otel-endpoint", "", "OTLP/gRPC collector endpoint; tracing is off when empty")
	root.PersistentFlags().StringVar(&g.otelService, "otel-service", "gqlrunner", "OpenTelemetry service name")

	root.AddCommand(newSDLCmd(), newExecCmd(g))
	return root
}

// runnerOptions turns the global flags into runner options. The returned
// shutdown flushes pending spans.
func (g *globalFlags) runnerOptions(cmd *cobra.Command) ([]serverlessgql.Option, func(), error) {
	lvl, err := logging.ParseLevel(g.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("--log-level: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
	opts := []serverlessgql.Option{serverlessgql.WithLogger(logger)}

	if g.otelEndpoint == "" {
		return opts, func() {}, nil
	}
	tp, shutdown, err := otel.Setup(cmd.Context(), g.otelEndpoint, g.otelService)
	if err != nil {
		return nil, nil, fmt.Errorf("otel setup: %w", err)
	}
	opts = append(opts, serverlessgql.WithTracerProvider(tp))
	return opts, func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}, nil
}
