package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/talklike/internal/config"
	"github.com/matzehuels/talklike/pkg/buildinfo"
	"github.com/matzehuels/talklike/pkg/cache"
	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/httputil"
	"github.com/matzehuels/talklike/pkg/mcptool"
	"github.com/matzehuels/talklike/pkg/observability/metrics"
	"github.com/matzehuels/talklike/pkg/observability/tracing"
	"github.com/matzehuels/talklike/pkg/pipeline"
	"github.com/matzehuels/talklike/pkg/rpc"
	"github.com/matzehuels/talklike/pkg/server"
	"github.com/matzehuels/talklike/pkg/stream"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		httpAddr string
		grpcAddr string
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and gRPC APIs",
		Long: `Serve the HTTP API (/api/filters, /api/transform, /healthz, /metrics) and
the gRPC Transformer service until interrupted.

Settings come from TALKLIKE_* environment variables; flags override them.
Set TALKLIKE_REDIS_ADDR to share cached results between replicas,
TALKLIKE_MONGO_URI to serve filters stored in MongoDB and
TALKLIKE_OTEL_ENDPOINT to export traces.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := config.LoadService()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("http-addr") {
				svc.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("grpc-addr") {
				svc.GRPCAddr = grpcAddr
			}
			if cmd.Flags().Changed("watch") {
				svc.Watch = watch
			}

			ctx := cmd.Context()
			shutdownTracing, err := tracing.Setup(ctx, appName, svc.OTelEndpoint)
			if err != nil {
				return err
			}
			defer c.flushTraces(shutdownTracing, svc.ShutdownTimeout)

			runner, cleanup, err := c.newServiceRunner(ctx, svc)
			if err != nil {
				return err
			}
			defer cleanup()

			if dirs := c.dirs(); svc.Watch && len(dirs) > 0 {
				w, err := runner.Watch(ctx, dirs)
				if err != nil {
					return err
				}
				defer w.Close()
			}

			opts := []server.Option{
				server.WithAddr(svc.HTTPAddr),
				server.WithShutdownTimeout(svc.ShutdownTimeout),
			}
			if svc.Metrics {
				m := metrics.New()
				m.Install()
				opts = append(opts, server.WithMetrics(m))
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.New(runner, c.Logger, opts...).ListenAndServe(gctx)
			})
			if svc.GRPCAddr != "" {
				g.Go(func() error {
					return rpc.NewServer(runner, c.Logger).ListenAndServe(gctx, svc.GRPCAddr)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", server.DefaultAddr, "HTTP listen address")
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", rpc.DefaultAddr, "gRPC listen address (empty disables gRPC)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload filters when their files change")

	return cmd
}

// streamCommand creates the stream command.
func (c *CLI) streamCommand() *cobra.Command {
	var (
		brokers []string
		group   string
		topics  []string
		output  string
		filter  string
		from    string
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Transform Kafka records from input topics into an output topic",
		Long: `Consume text records from Kafka, transform them and produce the results to
an output topic. Records keep their key; a talklike-filter header overrides
the default filter per record. Sentence augmentations continue across the
records of a partition.`,
		Example: "  talklike stream --brokers localhost:9092 --topics chat --output chat-pirate --filter pirate",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := config.LoadService()
			if err != nil {
				return err
			}
			cfg := stream.Config{
				Brokers:     svc.KafkaBrokers,
				GroupID:     svc.KafkaGroup,
				Topics:      svc.KafkaTopics,
				OutputTopic: svc.KafkaOutput,
				Filter:      c.profile.DefaultFilter,
				Version:     svc.KafkaVersion,
				StartFrom:   svc.KafkaStartFrom,
			}
			flags := cmd.Flags()
			if flags.Changed("brokers") {
				cfg.Brokers = brokers
			}
			if flags.Changed("group") {
				cfg.GroupID = group
			}
			if flags.Changed("topics") {
				cfg.Topics = topics
			}
			if flags.Changed("output") {
				cfg.OutputTopic = output
			}
			if flags.Changed("filter") {
				cfg.Filter = filter
			}
			if flags.Changed("from") {
				cfg.StartFrom = from
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			shutdownTracing, err := tracing.Setup(ctx, appName, svc.OTelEndpoint)
			if err != nil {
				return err
			}
			defer c.flushTraces(shutdownTracing, svc.ShutdownTimeout)

			runner, cleanup, err := c.newServiceRunner(ctx, svc)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := stream.New(cfg, runner, c.Logger)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Run(ctx)
		},
	}

	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "Kafka bootstrap brokers")
	cmd.Flags().StringVar(&group, "group", "talklike", "consumer group id")
	cmd.Flags().StringSliceVar(&topics, "topics", nil, "input topics")
	cmd.Flags().StringVar(&output, "output", "", "output topic")
	cmd.Flags().StringVar(&filter, "filter", "", "filter for records without a talklike-filter header")
	cmd.Flags().StringVar(&from, "from", "newest", "initial offset for a new group: oldest or newest")

	return cmd
}

// mcpCommand creates the mcp command.
func (c *CLI) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve filters as MCP tools over stdio",
		Long: `Serve the list_filters, describe_filter and transform_text tools to an MCP
client over stdin and stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := config.LoadService()
			if err != nil {
				return err
			}
			runner, cleanup, err := c.newServiceRunner(cmd.Context(), svc)
			if err != nil {
				return err
			}
			defer cleanup()
			return mcptool.Run(cmd.Context(), runner, loggerFromContext(cmd.Context()))
		},
	}
}

// newServiceRunner wires the backends shared by the long-running commands:
// Redis or an in-memory result cache, and the filter directories, MongoDB,
// the remote catalog and the built-ins as sources.
func (c *CLI) newServiceRunner(ctx context.Context, svc config.Service) (*pipeline.Runner, func(), error) {
	var backend cache.Cache
	if svc.RedisAddr != "" || svc.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:   svc.RedisAddr,
			URL:    svc.RedisURL,
			Prefix: svc.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		backend = rc
	} else {
		backend = cache.NewMemoryCache(svc.CacheSize)
	}

	var (
		sources []catalog.Source
		mongo   *catalog.MongoSource
	)
	if dirs := c.dirs(); len(dirs) > 0 {
		sources = append(sources, catalog.NewDirSource(dirs...))
	}
	if svc.MongoURI != "" {
		var err error
		mongo, err = catalog.NewMongoSource(ctx, catalog.MongoConfig{
			URI:        svc.MongoURI,
			Database:   svc.MongoDatabase,
			Collection: svc.MongoCollection,
		})
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		sources = append(sources, mongo)
	}
	if url := c.remote(); url != "" {
		remote, err := catalog.NewRemoteSource(url, httputil.NewClient(backend), catalog.WithTTL(c.profile.Cache.TTL))
		if err != nil {
			if mongo != nil {
				_ = mongo.Close(ctx)
			}
			backend.Close()
			return nil, nil, err
		}
		sources = append(sources, remote)
	}
	sources = append(sources, catalog.Builtin())

	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version)
	runner := pipeline.NewRunner(catalog.NewMultiSource(sources...), backend, keyer, c.Logger)

	cleanup := func() {
		if mongo != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongo.Close(ctx); err != nil {
				c.Logger.Warn("close mongo", "error", err)
			}
		}
		if err := runner.Close(); err != nil {
			c.Logger.Warn("close cache", "error", err)
		}
	}
	return runner, cleanup, nil
}

// flushTraces exports pending spans, giving up after timeout.
func (c *CLI) flushTraces(shutdown func(context.Context) error, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		c.Logger.Warn("flush traces", "error", err)
	}
}
