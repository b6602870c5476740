package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/varity-labs/varity-app-store/common"
	"github.com/varity-labs/varity-app-store/conf"
	"github.com/varity-labs/varity-app-store/controller"
	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/node"
	"github.com/varity-labs/varity-app-store/service/audit_service"
	"github.com/varity-labs/varity-app-store/service/authz"
	"github.com/varity-labs/varity-app-store/service/event_service"
	"github.com/varity-labs/varity-app-store/service/ledger_service"
	"github.com/varity-labs/varity-app-store/service/registry_service"
	"github.com/varity-labs/varity-app-store/service/validation"
)

var log = common.NewLog("main")

// @title           App Store API
// @version         1.0
// @description     App registry with admin review, and a payment ledger that splits every sale between developer and treasury

// @host      localhost:7290
// @BasePath  /

// @schemes https http

func main() {
	cliApp := &cli.App{
		Name:  "appstore",
		Usage: "app registry and payment ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Value: "loc", Usage: "Environment: loc/mainnet/testnet/example", EnvVars: []string{"APPSTORE_ENV"}},
			&cli.StringFlag{Name: "config", Usage: "config file, overrides --env", EnvVars: []string{"APPSTORE_CONFIG"}},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "audit",
				Usage:  "recompute revenue totals from settled records and compare",
				Action: audit,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app wired components
type app struct {
	registry *registry_service.RegistryService
	ledger   *ledger_service.LedgerService
	audit    *audit_service.AuditService
	events   *event_service.Emitter
	recent   *event_service.RingSink
	archive  *event_service.ArchiveSink
}

func (a *app) close() {
	if a.audit != nil {
		a.audit.Stop()
	}
	if a.events != nil {
		a.events.Close()
	}
	if database.DB != nil {
		database.DB.Close()
	}
}

func serve(c *cli.Context) error {
	a, err := initAll(c)
	if err != nil {
		return err
	}
	defer a.close()

	if conf.Cfg.Audit.Enable {
		if err := a.audit.Start(); err != nil {
			return fmt.Errorf("start audit: %w", err)
		}
	}

	router := controller.SetupRouter(conf.Cfg, &controller.Services{
		Registry: a.registry,
		Ledger:   a.ledger,
		Audit:    a.audit,
		Recent:   a.recent,
		Archive:  a.archive,
	})
	srv := &http.Server{
		Addr:    ":" + conf.Cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go startServer(srv, errCh)
	log.Info("app store API started", "port", conf.Cfg.Server.Port)

	select {
	case <-waitForShutdown():
	case err := <-errCh:
		return err
	}

	log.Info("shutting down")
	shutdownServer(srv)
	log.Info("server exited")
	return nil
}

func audit(c *cli.Context) error {
	a, err := initAll(c)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.audit.Run(c.Context, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Printf("purchases=%d billing_entries=%d\n", report.Purchases, report.BillingEntries)
	fmt.Printf("expected platform=%d developer=%d\n", report.Expected.PlatformRevenue, report.Expected.DeveloperPayouts)
	fmt.Printf("recorded platform=%d developer=%d\n", report.Recorded.PlatformRevenue, report.Recorded.DeveloperPayouts)
	if !report.Match {
		return fmt.Errorf("revenue totals do not match settled records")
	}
	fmt.Println("ok")
	return nil
}

// initEnv initialize environment
func initEnv(c *cli.Context) error {
	env, err := conf.ParseEnvironment(c.String("env"))
	if err != nil {
		return err
	}
	conf.SystemEnvironmentEnum = env
	conf.ConfigPath = c.String("config")
	return nil
}

// initAll initialize all components
func initAll(c *cli.Context) (*app, error) {
	if err := initEnv(c); err != nil {
		return nil, err
	}
	if err := conf.InitConfig(); err != nil {
		return nil, err
	}
	cfg := conf.Cfg
	if err := common.SetupLog(cfg.Log.Level, cfg.Log.Format, cfg.Log.SentryDsn); err != nil {
		log.Warn("sentry disabled", "err", err)
	}
	log.Info("configuration loaded", "env", c.String("env"), "net", cfg.Net, "port", cfg.Server.Port)

	if err := initDatabase(cfg); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a := &app{}
	a.events, a.recent, a.archive = initEvents(cfg)

	ac := authz.NewContext(database.DB)
	rules := validation.NewRules(cfg.Registry.Categories, cfg.Registry.SupportedChains, cfg.Registry.Tiers)
	a.registry = registry_service.NewRegistryService(database.DB, ac, rules, a.events)

	a.ledger = ledger_service.NewLedgerService(database.DB, ac, initToken(cfg), a.events, ledger_service.Config{
		Treasury:     models.ParseAccount(cfg.Ledger.Treasury),
		TokenAddress: cfg.Ledger.TokenAddress,
	})
	if cfg.Ledger.VerifyAppIDs {
		a.ledger.SetVerifier(a.registry)
	}

	a.audit = audit_service.NewAuditService(database.DB, a.ledger.Locker(), cfg.Audit.Interval)

	if err := initialize(c.Context, cfg, a); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// initDatabase initialize database based on configuration
func initDatabase(cfg *conf.Config) error {
	dbType := database.DBType(cfg.Database.Type)

	switch dbType {
	case database.DBTypePebble:
		config := &database.PebbleConfig{
			DataDir:  cfg.Database.DataDir,
			InMemory: cfg.Database.InMemory,
		}
		return database.InitDatabase(database.DBTypePebble, config)
	default:
		return fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// initEvents builds the emitter with every configured sink. A sink that fails to open is
// skipped; facts are still delivered to the others.
func initEvents(cfg *conf.Config) (*event_service.Emitter, *event_service.RingSink, *event_service.ArchiveSink) {
	recent := event_service.NewRingSink(cfg.Events.RecentSize)
	events := event_service.NewEmitter(recent)

	if cfg.Events.LogEnabled {
		events.AddSink(event_service.LogSink{})
	}
	if cfg.Events.ZmqEndpoint != "" {
		z, err := event_service.NewZMQSink(cfg.Events.ZmqEndpoint)
		if err != nil {
			log.Error("zmq sink disabled", "endpoint", cfg.Events.ZmqEndpoint, "err", err)
		} else {
			events.AddSink(z)
		}
	}

	var archive *event_service.ArchiveSink
	if cfg.Events.ArchiveDsn != "" {
		var err error
		archive, err = event_service.NewArchiveSink(cfg.Events.ArchiveDsn)
		if err != nil {
			log.Error("event archive disabled", "dsn", cfg.Events.ArchiveDsn, "err", err)
			archive = nil
		} else {
			events.AddSink(archive)
		}
	}
	return events, recent, archive
}

func initToken(cfg *conf.Config) node.TokenTransferer {
	if cfg.Token.DryRun || cfg.Token.GatewayUrl == "" {
		log.Warn("token transfers are logged only, no funds move")
		return node.LogTransferer{}
	}
	client := node.NewClientNode(cfg.Token.GatewayUrl, cfg.Token.ApiKey, cfg.Token.Timeout, cfg.Log.Level == "debug")
	return node.NewTokenClient(client, cfg.Ledger.TokenAddress)
}

// initialize seeds the first admin and the ledger owner. Both are no-ops once done.
func initialize(ctx context.Context, cfg *conf.Config, a *app) error {
	deployer := models.ParseAccount(cfg.Deployer)
	if deployer.IsZero() {
		log.Warn("no deployer configured, registry and ledger stay uninitialized until one is set")
		return nil
	}
	if err := a.registry.Initialize(ctx, deployer); err != nil {
		return fmt.Errorf("initialize registry: %w", err)
	}
	if err := a.ledger.Initialize(ctx, deployer); err != nil {
		return fmt.Errorf("initialize ledger: %w", err)
	}
	return nil
}

// startServer start HTTP server
func startServer(srv *http.Server, errCh chan<- error) {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errCh <- fmt.Errorf("listen: %w", err)
	}
}

// waitForShutdown wait for shutdown signal
func waitForShutdown() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// shutdownServer gracefully shutdown server
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}
}
