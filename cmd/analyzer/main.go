package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"megasena-analyzer/internal/analytics"
	"megasena-analyzer/internal/api/loterias"
	"megasena-analyzer/internal/backtest"
	"megasena-analyzer/internal/config"
	"megasena-analyzer/internal/database"
	"megasena-analyzer/internal/export"
	"megasena-analyzer/internal/frequency"
	"megasena-analyzer/internal/generator"
	"megasena-analyzer/internal/ingest"
	"megasena-analyzer/internal/kvstore"
	"megasena-analyzer/internal/source"
	"megasena-analyzer/models"
)

// storage is the full persistence surface the CLI wires up.
type storage interface {
	models.DrawStore
	models.ResultSink
	Close() error
}

var (
	cfg   *config.Config
	store storage
	src   *source.Cached
	gen   *generator.Generator
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	root := &cobra.Command{
		Use:           "analyzer",
		Short:         "Mega-Sena statistics and backtest engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			setupLogging(cfg.LogLevel)

			store, err = openStore(cfg)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			src = source.NewCached(store)
			gen = generator.New(
				generator.WithSink(store),
				generator.WithWindowDays(cfg.WindowDays),
			)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if store != nil {
				if err := store.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to close storage")
				}
			}
		},
	}

	root.AddCommand(
		updateCmd(ctx),
		generateCmd(models.MethodAllTime, "Generate a candidate set from all-time frequencies"),
		generateCmd(models.MethodLastYear, "Generate a candidate set from the trailing-window frequencies"),
		generateCmd(models.MethodWeighted, "Generate a frequency-weighted random candidate set"),
		generateCmd(models.MethodInsights, "Generate a candidate set from prior backtest results"),
		predictCmd(),
		pairsCmd(),
		tripletsCmd(),
		conditionalCmd(),
		distributionCmd(),
		backtestCmd(ctx),
		summaryCmd(),
		exportCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// openStore builds the configured storage backend.
func openStore(cfg *config.Config) (storage, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return database.New(database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     strconv.Itoa(cfg.DBPort),
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
	case config.BackendBadger:
		return kvstore.Open(cfg.BadgerDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func updateCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch missing draws from the results API",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := loterias.NewClient(loterias.ClientOptions{
				BaseURL:         cfg.APIBaseURL,
				RequestTimeout:  time.Duration(cfg.RequestTimeout) * time.Second,
				RequestsPerSec:  cfg.RequestsPerSec,
				MaxRetryTimeout: time.Duration(cfg.MaxRetrySeconds) * time.Second,
			})
			updater := ingest.NewUpdater(client, store)

			result, err := updater.Sync(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Latest contest: %d\nInserted: %d\nSkipped: %d\n",
				result.Latest, result.Inserted, result.Skipped)
			return nil
		},
	}
}

func generateCmd(method models.Method, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(method),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			draws, err := src.Load()
			if err != nil {
				return err
			}
			set, err := gen.Generate(method, draws)
			if err != nil {
				return err
			}
			if len(set) == 0 {
				fmt.Println("No draws available")
				return nil
			}
			fmt.Println(formatSet(set))
			return nil
		},
	}
}

func predictCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score every number and show the strongest candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			draws, err := src.Load()
			if err != nil {
				return err
			}
			scored, err := gen.ScoreAll(draws)
			if err != nil {
				return err
			}
			if top > len(scored) {
				top = len(scored)
			}
			for _, s := range scored[:top] {
				fmt.Printf("%2d  %.4f\n", s.Number, s.Score)
			}
			set, err := gen.Prediction(draws)
			if err != nil {
				return err
			}
			fmt.Printf("Candidate set: %s\n", formatSet(set))
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", generator.PredictionTopN, "how many scored numbers to display")
	return cmd
}

func pairsCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Show the most frequent number pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			draws, err := src.Load()
			if err != nil {
				return err
			}
			for _, p := range frequency.Pairs(draws, top) {
				fmt.Printf("(%2d, %2d)  %d\n", p.Pair[0], p.Pair[1], p.Count)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "how many pairs to display")
	return cmd
}

func tripletsCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "triplets",
		Short: "Show the most frequent number triplets",
		RunE: func(cmd *cobra.Command, args []string) error {
			draws, err := src.Load()
			if err != nil {
				return err
			}
			for _, t := range frequency.Triplets(draws, top) {
				fmt.Printf("(%2d, %2d, %2d)  %d\n", t.Triplet[0], t.Triplet[1], t.Triplet[2], t.Count)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "how many triplets to display")
	return cmd
}

func conditionalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conditional <given> <target>",
		Short: "Probability of target appearing in draws that contain given",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			given, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse given: %w", err)
			}
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("parse target: %w", err)
			}
			draws, err := src.Load()
			if err != nil {
				return err
			}
			p, err := analytics.ConditionalProbability(draws, given, target)
			if err != nil {
				return err
			}
			fmt.Printf("P(%d | %d) = %.4f\n", target, given, p)
			return nil
		},
	}
}

func distributionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distribution",
		Short: "Chi-square test of number distribution uniformity",
		RunE: func(cmd *cobra.Command, args []string) error {
			draws, err := src.Load()
			if err != nil {
				return err
			}
			stat, p, err := analytics.ChiSquareUniformity(draws)
			if err != nil {
				return err
			}
			fmt.Printf("Chi-square statistic: %.4f\np-value: %.4f\n", stat, p)
			if p < 0.05 {
				fmt.Println("Distribution deviates from uniform at the 5% level")
			} else {
				fmt.Println("No significant deviation from uniform")
			}
			return nil
		},
	}
}

func backtestCmd(ctx context.Context) *cobra.Command {
	var (
		methodName string
		times      int
	)
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a strategy repeatedly against the full history",
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := models.ParseMethod(methodName)
			if err != nil {
				return err
			}
			engine := backtest.NewEngine(src, store, gen)

			session, err := engine.RunMultiple(ctx, method, times, func(successful, failed int) {
				if (successful+failed)%25 == 0 {
					log.Info().
						Int("successful", successful).
						Int("failed", failed).
						Msg("Backtest progress")
				}
			})
			if err != nil {
				return err
			}

			fmt.Printf("Method: %s\nRuns: %d successful, %d failed\n",
				session.Method, session.Successful, session.Failed)
			fmt.Printf("Consolidated set: %s\n", formatSet(session.Consolidated))
			fmt.Println("Match counts:")
			printHistogram(countsToHistogram(session.Runs))
			return nil
		},
	}
	cmd.Flags().StringVar(&methodName, "method", string(models.MethodWeighted), "generation strategy")
	cmd.Flags().IntVar(&times, "times", 0, "number of runs (defaults to BACKTEST_RUNS)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if times == 0 {
			times = cfg.BacktestRuns
		}
	}
	return cmd
}

func summaryCmd() *cobra.Command {
	var methodName string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show persisted backtest results for a strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := models.ParseMethod(methodName)
			if err != nil {
				return err
			}
			engine := backtest.NewEngine(src, store, gen)

			summary, err := engine.Summary(method)
			if err != nil {
				return err
			}
			fmt.Printf("Method: %s\nRuns: %d\nDraws scored: %d\n",
				summary.Method, summary.RunCount, summary.TotalDraws)
			fmt.Printf("Latest set: %s\nLatest run: %s\n",
				formatSet(summary.Generated), summary.LastRunTime.Format(time.RFC3339))
			fmt.Println("Match counts:")
			printHistogram(summary.Histogram)
			return nil
		},
	}
	cmd.Flags().StringVar(&methodName, "method", string(models.MethodWeighted), "generation strategy")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		formatName string
		outDir     string
		top        int
	)
	cmd := &cobra.Command{
		Use:   "export <draws|frequency|pairs|triplets>",
		Short: "Export data to CSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := export.Format(formatName)
			writer, err := export.NewWriter(outDir)
			if err != nil {
				return err
			}
			draws, err := src.Load()
			if err != nil {
				return err
			}

			var path string
			switch args[0] {
			case "draws":
				path, err = writer.Draws("draws", format, draws)
			case "frequency":
				path, err = writer.Frequencies("frequency", format, frequency.Count(draws))
			case "pairs":
				path, err = writer.Pairs("pairs", format, frequency.Pairs(draws, top))
			case "triplets":
				path, err = writer.Triplets("triplets", format, frequency.Triplets(draws, top))
			default:
				return fmt.Errorf("%w: unknown export target %q", models.ErrInvalidArgument, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&formatName, "format", string(export.FormatCSV), "csv or json")
	cmd.Flags().StringVar(&outDir, "out", "./exports", "output directory")
	cmd.Flags().IntVar(&top, "top", 50, "how many pairs or triplets to export")
	return cmd
}

func formatSet(set models.CandidateSet) string {
	parts := make([]string, len(set))
	for i, n := range set {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, " ")
}

func countsToHistogram(runs []models.BacktestRun) map[int]int {
	hist := make(map[int]int)
	for _, run := range runs {
		for m, c := range run.Histogram() {
			hist[m] += c
		}
	}
	return hist
}

func printHistogram(hist map[int]int) {
	keys := make([]int, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		fmt.Printf("  %d matches: %d draws\n", k, hist[k])
	}
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
