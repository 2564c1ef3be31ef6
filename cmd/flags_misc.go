package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/celestiaorg/headersync/libs/utils"
	"github.com/celestiaorg/headersync/logs"
)

var log = logging.Logger("cmd")

const serviceName = "headersync"

var (
	logLevelFlag        = "log.level"
	logLevelModuleFlag  = "log.level.module"
	pprofFlag           = "pprof"
	pprofAddrFlag       = "pprof.addr"
	tracingFlag         = "tracing"
	tracingEndpointFlag = "tracing.endpoint"
	tracingTLSFlag      = "tracing.tls"
	metricsFlag         = "metrics"
	metricsEndpointFlag = "metrics.endpoint"
	metricsTLSFlag      = "metrics.tls"
)

// MiscFlags gives a set of hardcoded flags for logging, profiling and telemetry.
func MiscFlags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.String(
		logLevelFlag,
		"INFO",
		"DEBUG, INFO, WARN or ERROR, in any case",
	)
	flags.StringSlice(
		logLevelModuleFlag,
		nil,
		"<module>:<level>, e.g. header/sync:debug",
	)

	flags.Bool(pprofFlag, false, "Serves the pprof profiles while the command runs")
	flags.String(pprofAddrFlag, "127.0.0.1:6000", "Address of the pprof server. Depends on '--pprof'")

	flags.Bool(tracingFlag, false, "Exports traces over OTLP HTTP")
	flags.String(tracingEndpointFlag, "localhost:4318", "OTLP HTTP endpoint traces are sent to")
	flags.Bool(tracingTLSFlag, true, "Uses TLS towards the tracing endpoint")

	flags.Bool(metricsFlag, false, "Exports metrics over OTLP HTTP")
	flags.String(metricsEndpointFlag, "localhost:4318", "OTLP HTTP endpoint metrics are sent to")
	flags.Bool(metricsTLSFlag, true, "Uses TLS towards the metrics endpoint")

	return flags
}

// ParseMiscFlags applies the miscellaneous flags of cmd. Everything started here is
// stopped by the Env's Shutdown.
func ParseMiscFlags(ctx context.Context, cmd *cobra.Command) error {
	env := GetEnv(ctx)
	flags := cmd.Flags()

	if err := parseLogLevels(flags); err != nil {
		return err
	}

	if enabled, _ := flags.GetBool(pprofFlag); enabled {
		if err := startPprof(env, flags.Lookup(pprofAddrFlag).Value.String()); err != nil {
			return err
		}
	}

	if enabled, _ := flags.GetBool(tracingFlag); enabled {
		tls, _ := flags.GetBool(tracingTLSFlag)
		if err := setupTracing(ctx, env, flags.Lookup(tracingEndpointFlag).Value.String(), tls); err != nil {
			return err
		}
	}

	if enabled, _ := flags.GetBool(metricsFlag); enabled {
		tls, _ := flags.GetBool(metricsTLSFlag)
		endpoint := flags.Lookup(metricsEndpointFlag).Value.String()
		if err := setupMetrics(ctx, env, cmd.Name(), endpoint, tls); err != nil {
			return err
		}
	}
	return nil
}

func parseLogLevels(flags *flag.FlagSet) error {
	if lvl := flags.Lookup(logLevelFlag).Value.String(); lvl != "" {
		level, err := logging.LevelFromString(lvl)
		if err != nil {
			return fmt.Errorf("cmd: while parsing '%s': %w", logLevelFlag, err)
		}
		logs.SetAllLoggers(level)
	}

	modules, err := flags.GetStringSlice(logLevelModuleFlag)
	if err != nil {
		return err
	}
	for _, ml := range modules {
		module, level, ok := strings.Cut(ml, ":")
		if !ok {
			return fmt.Errorf("cmd: %s arg must be in form <module>:<level>, e.g. header/sync:debug", logLevelModuleFlag)
		}
		if err := logging.SetLogLevel(module, level); err != nil {
			return fmt.Errorf("cmd: while parsing '%s': %w", logLevelModuleFlag, err)
		}
	}
	return nil
}

// startPprof listens on addr before returning, so a taken port fails the command.
func startPprof(env *Env, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cmd: starting pprof server: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("pprof server", "err", err)
		}
	}()
	env.OnShutdown(srv.Shutdown)
	log.Infow("serving pprof", "addr", listener.Addr().String())
	return nil
}

func setupTracing(ctx context.Context, env *Env, endpoint string, tls bool) error {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
		otlptracehttp.WithEndpoint(endpoint),
	}
	if !tls {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("cmd: creating trace exporter: %w", err)
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	env.OnShutdown(tp.Shutdown)
	return nil
}

func setupMetrics(ctx context.Context, env *Env, name, endpoint string, tls bool) error {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if !tls {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	mp, err := utils.NewMetricProvider(ctx, utils.MetricProviderConfig{
		ServiceNamespace: serviceName,
		ServiceName:      name,
		OTLPOptions:      opts,
	})
	if err != nil {
		return err
	}
	otel.SetMeterProvider(mp)
	env.metrics = true
	env.OnShutdown(mp.Shutdown)
	return nil
}
