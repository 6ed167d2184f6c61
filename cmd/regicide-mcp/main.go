package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/regicide/internal/config"
	regicidemcp "github.com/peterkuimelis/regicide/internal/mcp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rulesFile := flag.String("rules", cfg.RulesFile, "YAML rules override file")
	seed := flag.Uint64("seed", cfg.Seed, "shuffle seed for games started without one (0 = random)")
	flag.Parse()

	if *rulesFile != "" && *rulesFile != cfg.RulesFile {
		if err := cfg.LoadRulesFile(*rulesFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Seed = *seed

	// stdout carries the MCP stream; the logger writes to stderr.
	logger, err := cfg.NewLogger("regicide-mcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	tools := regicidemcp.NewTools(cfg.Rules(), logger)
	tools.NewSeed = cfg.NewSeed

	s := server.NewMCPServer("regicide", "1.0.0")
	tools.Register(s)

	logger.Info("serving MCP over stdio", zap.Int("players", cfg.Players))
	if err := server.ServeStdio(s); err != nil {
		logger.Error("mcp server stopped", zap.Error(err))
		os.Exit(1)
	}
}
