package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"

	"pingplatform/internal/api"
	"pingplatform/internal/auth"
	"pingplatform/internal/authz"
	"pingplatform/internal/catalog"
	"pingplatform/internal/config"
	"pingplatform/internal/dashboard"
	"pingplatform/internal/db"
	"pingplatform/internal/fixtures"
	"pingplatform/internal/notify"
	"pingplatform/internal/session"
	"pingplatform/internal/simulate"
	"pingplatform/internal/store"
	"pingplatform/internal/version"
	"pingplatform/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	var listen, fixturesPath, dbPath string
	flagSet := pflag.NewFlagSet("ping-server", pflag.ContinueOnError)
	flagSet.StringVar(&listen, "listen", "", "listen address (overrides LISTEN_ADDR)")
	flagSet.StringVar(&fixturesPath, "fixtures", "", "fixture YAML file (overrides FIXTURES_PATH)")
	flagSet.StringVar(&dbPath, "db-path", "", "sqlite database path (overrides APP_DB_PATH)")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		v := version.Current()
		fmt.Printf("%s %s (%s)\n", v.Service, v.Version, v.Commit)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if listen != "" {
		cfg.ListenAddr = listen
	}
	if fixturesPath != "" {
		cfg.FixturesPath = fixturesPath
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	sqdb, dialect, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer sqdb.Close()
	if err := db.ApplyMigrations(sqdb, dialect); err != nil {
		return fmt.Errorf("migration: %w", err)
	}

	set, err := fixtures.Load(cfg.FixturesPath)
	if err != nil {
		return fmt.Errorf("fixtures: %w", err)
	}
	creds, err := auth.NewCredentials(set.Credentials)
	if err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	enforcer, err := authz.New()
	if err != nil {
		return fmt.Errorf("authz: %w", err)
	}
	profile, err := simulate.ProfileByName(cfg.ScanRewardProfile)
	if err != nil {
		return err
	}

	clk := clockwork.NewRealClock()
	cat := catalog.New(set)
	st := store.New(sqdb, dialect)
	feed := notify.NewFeed(clk)
	tokens := auth.NewTokens(cfg.SessionSigningKey, clk.Now)
	authCtx := session.NewAuthContext(session.NewKVService(st, cfg.StoragePrefix), creds, tokens, cat)
	engine := simulate.NewEngine(clk, cat, simulate.RandomOutcomes{}, feed, notify.NewSender(cfg), simulate.Options{
		Delays: simulate.Delays{
			Scan:    cfg.ScanDelay,
			Claim:   cfg.ClaimDelay,
			Recycle: cfg.RecycleDelay,
		},
		Profile:         profile,
		TokensPerBottle: cfg.TokensPerBottle,
	})

	r := api.NewRouter(api.Deps{
		Config:    cfg,
		Clock:     clk,
		Catalog:   cat,
		Store:     st,
		Auth:      authCtx,
		Authz:     enforcer,
		Engine:    engine,
		Workflow:  workflow.New(workflow.Mode(cfg.WorkflowMode), cat, st),
		Dashboard: dashboard.New(cat),
		Feed:      feed,
	})

	hsrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTPReadHeaderTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening addr=%s db_driver=%s workflow_mode=%s reward_profile=%s", cfg.ListenAddr, dialect, cfg.WorkflowMode, cfg.ScanRewardProfile)
		if err := hsrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hsrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	engine.Wait()
	return nil
}
