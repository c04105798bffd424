package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/lookup-get/pkg/config"
	"github.com/Sternrassler/lookup-get/pkg/logging"
	"github.com/Sternrassler/lookup-get/pkg/lookup"
	"github.com/Sternrassler/lookup-get/pkg/metrics"
	"github.com/Sternrassler/lookup-get/pkg/ratelimit"
	"github.com/Sternrassler/lookup-get/pkg/sink"
	"github.com/Sternrassler/lookup-get/pkg/transport"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// Version is set at build time.
var Version = "dev"

// options holds the raw flag values. Only flags the user set override the
// loaded configuration.
type options struct {
	configFile    string
	url           string
	port          int
	authorization string
	requests      int
	limit         int
	input         string
	engine        string
	admission     string
	timeout       time.Duration
	rate          float64
	logLevel      string
	pretty        bool
	redisAddr     string
	redisTTL      time.Duration
	metricsAddr   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "lookup-client [url [port [authorization [requests [limit]]]]]",
		Short: "Resolve a batch of identifiers against an HTTP lookup service",
		Long: `lookup-client issues one GET per distinct identifier to <url><id> with at
most <limit> requests in flight and prints one payload per identifier.

Switches may be abbreviated to their first letter and written in any case
(-Url, -PORT, -a). Values without a switch fill the remaining switches in the
order url, port, authorization, requests, limit. All other flags need two
dashes (--engine, --pretty).

Defaults: url http://localhost/items/, port 8080, empty authorization,
requests 100, limit 5. A 429 puts the identifier straight back on the queue;
--engine dispatcher retries it after a backoff instead.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(len(positionalOrder)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	f.StringVarP(&opts.url, "url", "u", config.DefaultURL, "base URL every identifier is appended to")
	f.IntVarP(&opts.port, "port", "p", config.DefaultPort, "TCP port (1-65535)")
	f.StringVarP(&opts.authorization, "authorization", "a", "", "Authorization header value")
	f.IntVarP(&opts.requests, "requests", "r", config.DefaultRequests, "number of identifiers to generate")
	f.IntVarP(&opts.limit, "limit", "l", config.DefaultLimit, "maximum concurrent requests")
	f.StringVar(&opts.input, "input", "", "read identifiers from file, one per line (- for stdin)")
	f.StringVar(&opts.engine, "engine", config.DefaultEngine, "scheduling engine: workers (429s requeued at once, no cap) or dispatcher (429s retried with backoff, capped by retry.max_attempts)")
	f.StringVar(&opts.admission, "admission", config.DefaultAdmission, "admission semaphore: fast or weighted")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (0 = none)")
	f.Float64Var(&opts.rate, "rate", 0, "maximum requests per second (0 = unlimited)")
	f.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error, disabled (off)")
	f.BoolVar(&opts.pretty, "pretty", false, "human-readable logs on stderr")
	f.StringVar(&opts.redisAddr, "redis-addr", "", "export results to Redis at this address")
	f.DurationVar(&opts.redisTTL, "redis-ttl", config.DefaultRedisTTL, "TTL of exported batches")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	cmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR", err)
		stop()
		os.Exit(1)
	}
}

// resolveConfig layers file, environment, flags and positional values.
func resolveConfig(cmd *cobra.Command, opts *options, args []string) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	positional, err := assignPositional(args, flags.Changed)
	if err != nil {
		return nil, err
	}
	for name, value := range positional {
		if err := flags.Set(name, value); err != nil {
			return nil, fmt.Errorf("invalid value %q for %s: %w", value, name, err)
		}
	}

	if flags.Changed("url") {
		cfg.Lookup.URL = opts.url
	}
	if flags.Changed("port") {
		cfg.Lookup.Port = opts.port
	}
	if flags.Changed("authorization") {
		cfg.Lookup.Authorization = opts.authorization
	}
	if flags.Changed("requests") {
		cfg.Lookup.Requests = opts.requests
	}
	if flags.Changed("limit") {
		cfg.Lookup.Limit = opts.limit
	}
	if flags.Changed("engine") {
		cfg.Lookup.Engine = opts.engine
	}
	if flags.Changed("admission") {
		cfg.Lookup.Admission = opts.admission
	}
	if flags.Changed("timeout") {
		cfg.Transport.Timeout = opts.timeout
	}
	if flags.Changed("rate") {
		cfg.Transport.Rate = opts.rate
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("pretty") {
		cfg.Logging.Pretty = opts.pretty
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr = opts.redisAddr
	}
	if flags.Changed("redis-ttl") {
		cfg.Redis.TTL = opts.redisTTL
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = opts.metricsAddr
	}

	if flags.Changed("requests") && cfg.Lookup.Requests < 1 {
		return nil, fmt.Errorf("the value for switch [-r] was not a valid non-zero positive number")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLookup(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := resolveConfig(cmd, opts, args)
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	logger := logging.NewLogger(logging.ComponentCLI)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var ids []string
	if opts.input != "" {
		if ids, err = readIDs(opts.input, cmd.InOrStdin()); err != nil {
			return err
		}
	} else {
		ids = generateIDs(cfg.Lookup.Requests, rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	logger.Info().
		Str("url", cfg.Lookup.URL).
		Int("port", cfg.Lookup.Port).
		Bool("authorization", cfg.Lookup.Authorization != "").
		Int("identifiers", len(ids)).
		Int("limit", cfg.Lookup.Limit).
		Str("engine", cfg.Lookup.Engine).
		Msg("lookup-client starting")

	if cfg.Metrics.Addr != "" {
		srv, err := metrics.Start(cfg.Metrics.Addr, logging.NewLogger(logging.ComponentMetrics))
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	sinks := sink.Multi{sink.NewWriterSink(cmd.OutOrStdout())}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		sinks = append(sinks, sink.NewRedisSink(rdb, cfg.Redis.Prefix, cfg.Redis.TTL, logging.NewLogger(logging.ComponentSink)))
	}

	batchCfg := cfg.Batch()
	batchCfg.Transport = transport.NewFactory(transportOptions(cfg)...)
	batchCfg.Tracker = ratelimit.NewTracker(logging.NewLogger(logging.ComponentRateLimit))
	batchLogger := logging.NewLogger(logging.ComponentLookup)
	batchCfg.Logger = &batchLogger

	table, err := lookup.Run(ctx, ids, batchCfg)
	if err != nil {
		return err
	}

	batchID := sink.NewBatchID()
	results := table.Results()
	if err := sinks.Write(context.WithoutCancel(ctx), batchID, results); err != nil {
		logger.Error().Err(err).Str("batch_id", batchID).Msg("Writing results failed")
		return err
	}

	if missing := table.Missing(ids); len(missing) > 0 {
		logger.Warn().
			Str("batch_id", batchID).
			Int("unresolved", len(missing)).
			Msg("Some identifiers were not resolved")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// transportOptions builds the options shared by every worker's transport.
// The rate limiter is shared so the limit applies to the whole batch.
func transportOptions(cfg *config.Config) []transport.Option {
	opts := []transport.Option{
		transport.WithLogger(logging.NewLogger(logging.ComponentTransport)),
	}
	if cfg.Transport.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(cfg.Transport.Timeout))
	}
	if cfg.Transport.Rate > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.Transport.Rate), cfg.Transport.Burst)
		opts = append(opts, transport.WithLimiter(limiter))
	}
	return opts
}
