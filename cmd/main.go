package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fasalsetu/agrilink/internal/config"
	"github.com/fasalsetu/agrilink/internal/handlers/httphandlers"
	"github.com/fasalsetu/agrilink/internal/interfaces"
	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/repositories/memory"
	"github.com/fasalsetu/agrilink/internal/repositories/sqlstore"
	"github.com/fasalsetu/agrilink/internal/resources/analysis"
	"github.com/fasalsetu/agrilink/internal/resources/assistant"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/fasalsetu/agrilink/internal/resources/demands"
	"github.com/fasalsetu/agrilink/internal/resources/users"
	"github.com/fasalsetu/agrilink/internal/seed"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type repos struct {
	users     users.Repository
	demands   demands.Repository
	contracts contract.Repository
	close     func() error
}

func main() {
	// .env is optional, env variables and flags still apply
	_ = godotenv.Load()

	var cfg config.Config
	err := config.LoadConfig(&cfg, os.Args)
	if err != nil {
		panic(err)
	}

	logCfg := lib.LoggerConfig{
		Color:      cfg.Log.Color,
		IsProd:     cfg.Log.IsProd,
		JSON:       cfg.Log.JSON,
		FolderPath: cfg.Log.FolderPath,
	}

	log, err := lib.NewLogger(logCfg.WithLevel(cfg.Log.LevelApp))
	if err != nil {
		panic(err)
	}

	trackerLog, err := lib.NewLogger(logCfg.WithLevel(cfg.Log.LevelTracker))
	if err != nil {
		panic(err)
	}

	httpLog, err := lib.NewLogger(logCfg.WithLevel(cfg.Log.LevelHTTP))
	if err != nil {
		panic(err)
	}

	defer func() {
		_ = log.Sync()
		_ = trackerLog.Sync()
		_ = httpLog.Sync()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-shutdownChan
		log.Warnf("Received signal: %s", s)
		cancel()

		s = <-shutdownChan
		log.Warnf("Received signal: %s. Forcing exit...", s)
		os.Exit(1)
	}()

	log.Infof("starting agrilink %s in %s", config.BuildVersion, cfg.Environment)
	if cfg.App.DemoMode {
		log.Warnf("demo mode is enabled, OTP checks accept the bypass code")
	}

	store, err := openRepos(ctx, &cfg, log.Named("STORE"))
	if err != nil {
		log.Fatalf("cannot open store: %s", err)
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Warnf("closing store: %s", err)
		}
	}()

	if cfg.App.SeedFixtures {
		fx, err := seed.Default()
		if err != nil {
			log.Fatalf("cannot parse fixtures: %s", err)
		}
		err = seed.Load(ctx, fx, store.users, store.demands, store.contracts, log.Named("SEED"))
		if err != nil {
			log.Fatalf("cannot load fixtures: %s", err)
		}
	}

	var (
		analyzer  analysis.Analyzer
		generator assistant.Generator = assistant.StaticGenerator{Text: assistant.FallbackText}
	)
	if cfg.AI.GeminiAPIKey != "" {
		genaiAnalyzer, err := analysis.NewGenAIAnalyzer(ctx, cfg.AI.GeminiAPIKey, cfg.AI.AnalysisModel)
		if err != nil {
			log.Fatalf("cannot create image analyzer: %s", err)
		}
		analyzer = genaiAnalyzer

		genaiGenerator, err := assistant.NewGenAIGenerator(ctx, cfg.AI.GeminiAPIKey, cfg.AI.ChatModel)
		if err != nil {
			log.Fatalf("cannot create chat generator: %s", err)
		}
		generator = genaiGenerator
	} else {
		log.Warnf("GEMINI_API_KEY is not set, growth updates cannot be verified and the assistant answers with a fallback")
	}

	tracker := contract.NewTracker(
		store.contracts,
		lib.RandomOTP{},
		contract.NewLogNotifier(log.Named("NOTIFY")),
		contract.TrackerConfig{
			DemoMode:           cfg.App.DemoMode,
			ConfirmationWindow: cfg.App.BuyerConfirmationWindow,
		},
		trackerLog.Named("TRACKER"),
	)
	directory := users.NewDirectory(store.users, log.Named("USERS"))
	board := demands.NewBoard(store.demands, tracker, log.Named("DEMANDS"))
	bot := assistant.NewAssistant(generator, cfg.AI.ChatHistorySize, log.Named("ASSISTANT"))

	publicUrl, err := url.Parse(cfg.Web.PublicUrl)
	if err != nil {
		log.Fatalf("invalid public url: %s", err)
	}

	handl := httphandlers.NewHTTPHandler(tracker, directory, board, bot, analyzer, cfg.AI.AnalysisTimeout, &cfg, publicUrl, httpLog.Named("HTTP"))
	server := &http.Server{
		Addr:    cfg.Web.Address,
		Handler: handl,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("http server is listening: %s", cfg.Web.Address)
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Infof("App exited due to %v", err)
}

func openRepos(ctx context.Context, cfg *config.Config, log interfaces.ILogger) (*repos, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Infof("using in-memory store, data is lost on exit")
		return &repos{
			users:     memory.NewUserRepo(),
			demands:   memory.NewDemandRepo(),
			contracts: memory.NewContractRepo(),
			close:     func() error { return nil },
		}, nil
	}

	store, err := sqlstore.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, log)
	if err != nil {
		return nil, err
	}
	return &repos{
		users:     store.Users(),
		demands:   store.Demands(),
		contracts: store.Contracts(),
		close:     store.Close,
	}, nil
}
