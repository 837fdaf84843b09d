package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/salary-parser/app/config"
	"github.com/salary-parser/app/services"
	"github.com/salary-parser/helpers/utils"
	"github.com/salary-parser/internal/feed"
	"github.com/salary-parser/internal/parser"
	"github.com/salary-parser/internal/search"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type opts struct {
	Config   string        `long:"config" env:"APP_CONFIG" description:"Path to app.yaml (default: ./config/app.yaml)"`
	Sources  []string      `long:"source" short:"s" description:"Source id to ingest; repeat for several (default: every source with a feed)"`
	File     string        `long:"file" description:"Read one saved feed document instead of fetching (needs exactly one --source)"`
	Budget   time.Duration `long:"budget" description:"Time budget for the whole run (default: worker.budget)"`
	Timeout  time.Duration `long:"timeout" default:"30s" description:"Timeout of a single feed request"`
	Rate     float64       `long:"rate" default:"0.5" description:"Feed requests per second; 0 for no limit"`
	Parallel int           `long:"parallel" default:"4" description:"Feeds downloaded at the same time"`
	DryRun   bool          `long:"dry-run" description:"Parse only; store and index nothing"`
}

func main() {
	var o opts
	if _, err := flags.NewParser(&o, flags.Default).Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := run(o); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

func run(o opts) error {
	v := viper.New()
	if o.Config != "" {
		v.SetConfigFile(o.Config)
	}
	appCfg, err := config.LoadApp(v)
	if err != nil {
		return fmt.Errorf("load app config: %w", err)
	}
	if err := config.Load(appCfg.ParserPath); err != nil {
		return err
	}

	logger, err := utils.NewLogger(appCfg.IsProduction())
	if err != nil {
		return err
	}
	defer logger.Sync()

	postParser, _, err := services.BuildParser(config.C, logger)
	if err != nil {
		return err
	}

	sources := o.Sources
	if len(sources) == 0 {
		for _, src := range postParser.Registry().All() {
			if src.FeedURL != "" {
				sources = append(sources, src.ID)
			}
		}
	}
	if o.File != "" && len(sources) != 1 {
		return fmt.Errorf("--file needs exactly one --source, got %d", len(sources))
	}

	budget := o.Budget
	if budget <= 0 {
		budget = appCfg.BatchBudget
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	runID := utils.GenerateUUID()
	logger = logger.With(zap.String("run_id", runID))
	logger.Info("worker run starting",
		zap.Strings("sources", sources),
		zap.Duration("budget", budget),
		zap.Bool("dry_run", o.DryRun))

	var (
		records  services.RecordSink
		unmapped services.UnmappedSink
		indexer  services.RecordIndexer
	)
	if !o.DryRun {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURL))
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("cannot disconnect from mongodb", zap.Error(err))
			}
		}()
		if err := client.Ping(ctx, nil); err != nil {
			return fmt.Errorf("ping mongodb: %w", err)
		}
		db := client.Database(appCfg.MongoDB)
		records = services.NewRecordStore(db, logger)
		unmapped = services.NewUnmappedStore(db, logger)

		if appCfg.MeiliURL != "" {
			index, err := search.NewRecordIndex(search.IndexConfig{Host: appCfg.MeiliURL, APIKey: appCfg.MeiliKey}, logger)
			if err != nil {
				logger.Warn("meilisearch unavailable, records will not be indexed", zap.Error(err))
			} else {
				indexer = index
			}
		}
	}

	ingest := services.NewIngestService(postParser, records, unmapped, indexer, logger)
	fetcher := feed.NewFetcher(appCfg.UserAgent, o.Timeout, logger)
	fetcher.SetRate(o.Rate)

	// feeds download concurrently (the fetcher throttles); ingestion stays
	// sequential so a source's records land together
	batches, loadErrs := prefetch(ctx, sources, o.Parallel, func(ctx context.Context, id string) ([]feed.Item, error) {
		return loadItems(ctx, fetcher, postParser, id, o.File)
	})

	failed := 0
	for i, id := range sources {
		if err := loadErrs[i]; err != nil {
			failed++
			logger.Error("cannot load feed", zap.String("source", id), zap.Error(err))
			continue
		}

		summary, err := ingest.Ingest(ctx, runID, id, batches[i])
		if err != nil {
			logger.Warn("run stopped early", zap.String("source", id), zap.Error(err))
			return err
		}
		failed += summary.Failed
	}

	if failed > 0 {
		logger.Warn("worker run finished with failures", zap.Int("failed", failed))
	} else {
		logger.Info("worker run finished")
	}
	return nil
}

type loadFunc func(ctx context.Context, sourceID string) ([]feed.Item, error)

// prefetch runs load for every source, at most parallel at a time. A failing
// source is reported in its own slot and does not cancel the others, so one
// broken feed never costs the run its healthy sources.
func prefetch(ctx context.Context, sources []string, parallel int, load loadFunc) ([][]feed.Item, []error) {
	batches := make([][]feed.Item, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(max(parallel, 1))
	for i, id := range sources {
		i, id := i, id
		g.Go(func() error {
			batches[i], errs[i] = load(ctx, id)
			return nil
		})
	}
	// every callback returns nil; errors live in errs
	_ = g.Wait()
	return batches, errs
}

func loadItems(ctx context.Context, fetcher *feed.Fetcher, p *parser.PostParser, sourceID, file string) ([]feed.Item, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return fetcher.Parse(string(data))
	}

	src, err := p.Source(sourceID)
	if err != nil {
		return nil, err
	}
	if src.FeedURL == "" {
		return nil, fmt.Errorf("source %s has no feed_url", src.ID)
	}
	return fetcher.Fetch(ctx, src.ID, src.FeedURL)
}
