package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/peterkuimelis/regicide/internal/config"
	"github.com/peterkuimelis/regicide/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.WebAddr, "HTTP address to listen on")
	rulesFile := flag.String("rules", cfg.RulesFile, "YAML rules override file")
	flag.Parse()

	if *rulesFile != "" && *rulesFile != cfg.RulesFile {
		if err := cfg.LoadRulesFile(*rulesFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	logger, err := cfg.NewLogger("regicide-web")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	srv := web.NewServer(web.Options{
		Rules:       cfg.Rules(),
		Logger:      logger,
		ActionRate:  cfg.ActionRate,
		ActionBurst: cfg.ActionBurst,
		NewSeed:     cfg.NewSeed,
		Debug:       cfg.IsDevelopment(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, *addr); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
