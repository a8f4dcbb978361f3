// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hangar-foundation/hangar/lib/clock"
	"github.com/hangar-foundation/hangar/lib/config"
	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/redemption"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/service"
	"github.com/hangar-foundation/hangar/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "configuration file path (default: $HANGAR_CONFIG)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("hangar-mint-service %s\n", version.Info())
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return fmt.Errorf("preparing state directories: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Operator token verification key. Generated on first boot;
	// operators mint tokens against it with `hangar token mint`.
	publicKey, _, generated, err := operator.LoadOrGenerateKeypair(cfg.Paths.Keys)
	if err != nil {
		return fmt.Errorf("loading operator signing key: %w", err)
	}
	if generated {
		logger.Info("generated operator signing keypair", "dir", cfg.Paths.Keys)
	}

	realmParty, err := cfg.Realm.Party()
	if err != nil {
		return fmt.Errorf("realm address: %w", err)
	}
	admin, err := cfg.Bootstrap.AdminParty()
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	signer, err := cfg.Bootstrap.SignerParty()
	if err != nil {
		return fmt.Errorf("bootstrap signer: %w", err)
	}

	windows, err := parseWindows(cfg.Windows)
	if err != nil {
		return fmt.Errorf("parsing sale windows: %w", err)
	}
	if len(windows) > 0 && admin.IsZero() {
		return fmt.Errorf("sale windows are configured but bootstrap.admin is empty; the scheduler needs an acting party")
	}

	clk := clock.Real()

	store, err := redemption.Open(ctx, redemption.Config{
		Path:     cfg.Paths.Database,
		PoolSize: cfg.Service.PoolSize,
		Realm:    coupon.Realm{Address: realmParty, Network: cfg.Realm.Network},
		Pilot: redemption.SpaceConfig{
			Ceiling:    cfg.Spaces.Pilot.Ceiling,
			PassSeries: cfg.Spaces.Pilot.PassSeries,
		},
		Racecraft: redemption.SpaceConfig{
			Ceiling:    cfg.Spaces.Racecraft.Ceiling,
			PassSeries: cfg.Spaces.Racecraft.PassSeries,
		},
		Admin:  admin,
		Clock:  clk,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if !signer.IsZero() {
		if err := bootstrapSigner(ctx, store, admin, signer, logger); err != nil {
			return err
		}
	}

	mint := &mintService{
		store:     store,
		clock:     clk,
		windows:   windows,
		startedAt: clk.Now(),
		logger:    logger,
	}

	socketServer := service.NewSocketServer(cfg.Paths.Socket, logger, &service.AuthConfig{
		PublicKey: publicKey,
		Clock:     clk,
	})
	mint.registerActions(socketServer)

	socketDone := make(chan error, 1)
	go func() {
		socketDone <- socketServer.Serve(ctx)
	}()

	if len(windows) > 0 {
		sched := &scheduler{
			store:   store,
			actor:   admin,
			windows: windows,
			clock:   clk,
			logger:  logger,
		}
		go sched.run(ctx)
	}

	logger.Info("mint service running",
		"environment", cfg.Environment,
		"socket", cfg.Paths.Socket,
		"database", cfg.Paths.Database,
		"windows", len(windows),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	// Wait for the socket server to drain active connections.
	if err := <-socketDone; err != nil {
		logger.Error("socket server error", "error", err)
	}

	return nil
}

// bootstrapSigner installs the configured trusted signer if the
// database has none. An established database keeps its signer;
// rotation goes through the signer-rotate action.
func bootstrapSigner(ctx context.Context, store *redemption.Store, admin, signer ref.Party, logger *slog.Logger) error {
	status, err := store.Status(ctx)
	if err != nil {
		return fmt.Errorf("reading drop state: %w", err)
	}
	if !status.Signer.IsZero() {
		return nil
	}
	if admin.IsZero() {
		return fmt.Errorf("bootstrap.signer is set but bootstrap.admin is empty; installing the signer needs an acting party")
	}
	if err := store.SetSigner(ctx, admin, signer); err != nil {
		return fmt.Errorf("installing trusted signer: %w", err)
	}
	logger.Info("bootstrapped trusted signer", "signer", signer)
	return nil
}
