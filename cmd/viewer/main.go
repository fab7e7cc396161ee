package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rivals-tracker/internal/api"
	"rivals-tracker/internal/config"
	"rivals-tracker/internal/constants"
	fxmodules "rivals-tracker/internal/fx"
	applogger "rivals-tracker/internal/logger"
	"rivals-tracker/internal/repository"
	"rivals-tracker/internal/service"
	"rivals-tracker/internal/stats"
	"rivals-tracker/internal/viewer"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type options struct {
	player     string
	ranked     bool
	role       string
	hero       string
	update     bool
	out        string
	watch      bool
	session    string
	newSession bool
	verbose    bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.ranked, "ranked", false, "use ranked hero stats instead of unranked")
	flag.StringVar(&opts.role, "role", "", "filter stats and the hero chart by role (Vanguard, Duelist, Strategist)")
	flag.StringVar(&opts.hero, "hero", "", "filter stats by hero name")
	flag.BoolVar(&opts.update, "update", false, "ask the upstream to refresh the player, then refetch")
	flag.StringVar(&opts.out, "out", "", "directory to write roles.svg and heroes.svg into")
	flag.BoolVar(&opts.watch, "watch", false, "keep running and show the update countdown until it elapses")
	flag.StringVar(&opts.session, "session", "", "session id to use (default: continue the last session)")
	flag.BoolVar(&opts.newSession, "new-session", false, "start a new session with an empty player cache")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <player>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.player = strings.TrimSpace(strings.Join(flag.Args(), " "))
	if opts.player == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	logger := applogger.NewWithWriter(os.Stderr, level)

	filter, err := service.ParseFilter(opts.role, opts.hero)
	if err != nil {
		return err
	}

	var (
		cfg    *config.Config
		stores fxmodules.Stores
		cache  *repository.PlayerCacheRepository
		locks  *repository.UpdateLockRepository
		client viewer.Client
	)
	app := fx.New(
		fx.NopLogger,
		fx.Supply(logger, fxmodules.SessionRequest{ID: viewer.SessionID(opts.session), Fresh: opts.newSession}),
		fxmodules.ViewerModule,
		fx.Populate(&cfg, &stores, &cache, &locks, &client),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			logger.Warn().Err(err).Msg("shutdown failed")
		}
	}()

	fmt.Fprintf(os.Stderr, "session: %s\n", stores.SessionID)

	page := viewer.NewPage(opts.player, client, cache, locks, viewer.Options{
		FreshnessWindow: cfg.FreshnessWindow,
		LockWindow:      cfg.UpdateLockWindow,
	}, logger)

	if err := page.Mount(ctx); err != nil {
		logger.Warn().Err(err).Msg("mount finished with an error")
	}

	if opts.update {
		err := page.Update(ctx)
		if errors.Is(err, viewer.ErrUpdateLocked) {
			fmt.Fprintf(os.Stderr, "update locked, available in %s\n", stats.FormatRemaining(page.Remaining()))
		} else if err != nil {
			logger.Warn().Err(err).Msg("update finished with an error")
		}
	}

	snap := page.Snapshot()
	var sum *service.Summary
	if len(snap.Data) > 0 {
		player, err := api.DecodePlayer(snap.Data)
		if err != nil {
			return fmt.Errorf("failed to decode player data: %w", err)
		}
		sum = service.Build(player, opts.player, cfg.PublicAPIVersion, opts.ranked, filter)
	}

	if err := viewer.WriteReport(os.Stdout, snap, sum); err != nil {
		return err
	}

	if opts.out != "" && sum != nil {
		paths, err := viewer.WriteCharts(opts.out, sum)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(os.Stderr, "wrote %s\n", p)
		}
	}

	if opts.watch && page.LockState() == viewer.Locked {
		watchCountdown(ctx, page)
	}

	if sum == nil {
		return errors.New("no player data")
	}
	return nil
}

func watchCountdown(ctx context.Context, page *viewer.Page) {
	done := make(chan struct{})
	var once bool
	countdown := viewer.NewCountdown(page, constants.CountdownTick, func(remaining time.Duration) {
		fmt.Fprintf(os.Stdout, "\rUpdate available in %s ", stats.FormatRemaining(remaining))
		if remaining == 0 && !once {
			once = true
			close(done)
		}
	})
	countdown.Start(ctx)
	defer countdown.Stop()

	select {
	case <-done:
		fmt.Fprintln(os.Stdout, "\nUpdate available")
	case <-ctx.Done():
		fmt.Fprintln(os.Stdout)
	}
}
