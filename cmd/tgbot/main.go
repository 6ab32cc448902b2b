package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"megasena-analyzer/internal/api/loterias"
	"megasena-analyzer/internal/backtest"
	"megasena-analyzer/internal/config"
	"megasena-analyzer/internal/database"
	"megasena-analyzer/internal/generator"
	"megasena-analyzer/internal/ingest"
	"megasena-analyzer/internal/kvstore"
	"megasena-analyzer/internal/source"
	"megasena-analyzer/models"
)

const helpText = `Mega-Sena analyzer bot.

Commands:
/alltime - most frequent numbers over the full history
/lastyear - most frequent numbers in the trailing year
/weighted - frequency-weighted random set
/predict - weighted score candidate set
/insights - set built from prior backtest results
/update - sync the draw history from the results API
/summary <method> - persisted backtest results`

// storage is the persistence surface shared by the bot handlers.
type storage interface {
	models.DrawStore
	models.ResultSink
	Close() error
}

type bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	store   storage
	src     *source.Cached
	gen     *generator.Generator
	engine  *backtest.Engine
	updater *ingest.Updater
	logger  zerolog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_TOKEN is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot API")
	}
	log.Info().Str("account", api.Self.UserName).Msg("Authorized")

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.Close()

	src := source.NewCached(store)
	gen := generator.New(
		generator.WithSink(store),
		generator.WithWindowDays(cfg.WindowDays),
	)
	client := loterias.NewClient(loterias.ClientOptions{
		BaseURL:         cfg.APIBaseURL,
		RequestTimeout:  time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetryTimeout: time.Duration(cfg.MaxRetrySeconds) * time.Second,
	})

	b := &bot{
		api:     api,
		cfg:     cfg,
		store:   store,
		src:     src,
		gen:     gen,
		engine:  backtest.NewEngine(src, store, gen),
		updater: ingest.NewUpdater(client, store),
		logger:  log.With().Str("component", "tgbot").Logger(),
	}
	b.run(context.Background())
}

func (b *bot) run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range b.api.GetUpdatesChan(u) {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		b.logger.Info().
			Str("command", update.Message.Command()).
			Int64("chat", update.Message.Chat.ID).
			Msg("Handling command")

		reply := b.handle(ctx, update.Message)
		msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error().Err(err).Msg("Failed to send reply")
		}
	}
}

func (b *bot) handle(ctx context.Context, msg *tgbotapi.Message) string {
	switch msg.Command() {
	case "start", "help":
		return helpText
	case "alltime", "lastyear", "weighted", "insights", "predict":
		return b.generate(msg.Command())
	case "update":
		return b.update(ctx)
	case "summary":
		return b.summary(msg.CommandArguments())
	default:
		return "Unknown command. Send /help for the command list."
	}
}

func (b *bot) generate(name string) string {
	method := models.Method(name)
	if name == "predict" {
		method = models.MethodPrediction
	}

	draws, err := b.src.Load()
	if err != nil {
		return "Failed to load draw history: " + err.Error()
	}
	set, err := b.gen.Generate(method, draws)
	if err != nil {
		return "Generation failed: " + err.Error()
	}
	if len(set) == 0 {
		return "No draws available yet. Run /update first."
	}
	return fmt.Sprintf("%s: %s", method, formatSet(set))
}

func (b *bot) update(ctx context.Context) string {
	result, err := b.updater.Sync(ctx)
	if err != nil {
		return "Update failed: " + err.Error()
	}
	return fmt.Sprintf("Latest contest %d. Inserted %d, skipped %d.",
		result.Latest, result.Inserted, result.Skipped)
}

func (b *bot) summary(arg string) string {
	name := strings.TrimSpace(arg)
	if name == "" {
		name = string(models.MethodWeighted)
	}
	method, err := models.ParseMethod(name)
	if err != nil {
		return err.Error()
	}

	summary, err := b.engine.Summary(method)
	if err != nil {
		return "No results for " + name + ": " + err.Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Method: %s\nRuns: %d\nDraws scored: %d\n",
		summary.Method, summary.RunCount, summary.TotalDraws)
	fmt.Fprintf(&sb, "Latest set: %s\n", formatSet(summary.Generated))
	fmt.Fprintf(&sb, "Latest run: %s", summary.LastRunTime.Format("2006-01-02 15:04"))
	return sb.String()
}

func openStore(cfg *config.Config) (storage, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return database.New(database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     fmt.Sprintf("%d", cfg.DBPort),
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

func formatSet(set models.CandidateSet) string {
	parts := make([]string, len(set))
	for i, n := range set {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, " ")
}

func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
