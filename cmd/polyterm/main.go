package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polyterm/config"
	"github.com/alejandrodnm/polyterm/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyterm/internal/adapters/storage"
	"github.com/alejandrodnm/polyterm/internal/adapters/terminal"
	"github.com/alejandrodnm/polyterm/internal/books"
	"github.com/alejandrodnm/polyterm/internal/discovery"
	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/execution"
	"github.com/alejandrodnm/polyterm/internal/portfolio"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("polyterm starting",
		"config", *configPath,
		"trading", cfg.Credentials.Configured(),
	)

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase, cfg.API.DataBase)

	journal, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer journal.Close()

	// Sin clave de firma el terminal arranca igualmente: descubrimiento,
	// books y cartera funcionan, y cualquier intento de operar devuelve
	// un error de validación.
	var executor ports.OrderExecutor = disabledExecutor{}
	if cfg.Credentials.Configured() {
		auth, err := polymarket.NewAuthClient(
			cfg.API.CLOBBase, cfg.API.GammaBase, cfg.API.DataBase,
			cfg.Credentials.PrivateKey, cfg.Credentials.ProxyAddress,
		)
		if err != nil {
			// El error de las capas de abajo nunca contiene la clave.
			slog.Error("failed to initialize trading credentials", "err", err)
			os.Exit(1)
		}
		trading, err := polymarket.NewTradingClient(auth, cfg.API.PolygonRPC)
		if err != nil {
			slog.Error("failed to connect to polygon rpc", "err", err)
			os.Exit(1)
		}
		executor = trading
	} else {
		slog.Warn("PRIVATE_KEY not set, trading disabled")
	}

	catalog := discovery.NewCatalog(client, cfg.Discovery.PageSize)
	enricher := discovery.NewEnricher(client, cfg.Discovery.EnrichWorkers)
	reader := books.NewReader(client)
	gateway := execution.NewGateway(executor, journal)
	reconciler := portfolio.NewReconciler(client, reader)

	controller := terminal.NewController(
		os.Stdin, os.Stdout,
		catalog, enricher, reader, gateway, reconciler,
		client, cfg.Credentials.Wallet(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := controller.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("terminal exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("polyterm stopped cleanly")
}

// disabledExecutor rechaza toda operación de trading cuando no hay
// credenciales configuradas.
type disabledExecutor struct{}

func (disabledExecutor) Submit(context.Context, ports.SubmitRequest) (domain.OrderReceipt, error) {
	return domain.OrderReceipt{}, errTradingDisabled("Submit")
}

func (disabledExecutor) Cancel(context.Context, string) error {
	return errTradingDisabled("Cancel")
}

func (disabledExecutor) OpenOrders(context.Context) ([]domain.OpenOrder, error) {
	return nil, errTradingDisabled("OpenOrders")
}

func (disabledExecutor) Balance(context.Context) (float64, error) {
	return 0, errTradingDisabled("Balance")
}

func errTradingDisabled(op string) error {
	return domain.Ef(domain.KindValidation, "main."+op,
		"trading disabled: PRIVATE_KEY not set")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	// Los logs van a stderr para no mezclarse con las tablas del terminal.
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
