package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/peterkuimelis/regicide/internal/config"
	"github.com/peterkuimelis/regicide/internal/game"
	rnet "github.com/peterkuimelis/regicide/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, cfg, os.Args[2:])
	case "host":
		err = runHost(ctx, cfg, os.Args[2:])
	case "join":
		err = runJoin(ctx, cfg, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  regicide play [--seed S] [--rules FILE] [--transcript FILE]")
	fmt.Println("  regicide host [--players N] [--addr ADDR] [--seed S] [--rules FILE] [--transcript FILE]")
	fmt.Println("  regicide join [--addr ADDR] [--name NAME]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play a solo game in this terminal")
	fmt.Println("  host    Start a game server and play as P1; others join over TCP")
	fmt.Println("  join    Connect to a game server")
	fmt.Println()
	fmt.Println("Settings can also come from REGICIDE_* environment variables or a .env file.")
}

// gameFlags holds the flags shared by play and host.
type gameFlags struct {
	seed       *uint64
	rules      *string
	transcript *string
}

func newGameFlags(fs *flag.FlagSet, cfg *config.Config) gameFlags {
	return gameFlags{
		seed:       fs.Uint64("seed", cfg.Seed, "shuffle seed (0 = random)"),
		rules:      fs.String("rules", cfg.RulesFile, "YAML rules override file"),
		transcript: fs.String("transcript", "", "append a text log of every game event to this file"),
	}
}

func applyGameFlags(cfg *config.Config, seed uint64, rulesFile string) error {
	cfg.Seed = seed
	if rulesFile != "" && rulesFile != cfg.RulesFile {
		if err := cfg.LoadRulesFile(rulesFile); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func runPlay(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	gf := newGameFlags(fs, cfg)
	fs.Parse(args)

	if err := applyGameFlags(cfg, *gf.seed, *gf.rules); err != nil {
		return err
	}
	cfg.Players = 1
	return runLocal(ctx, cfg, "", *gf.transcript)
}

func runHost(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	players := fs.Int("players", max(cfg.Players, 2), "number of players (2-4)")
	addr := fs.String("addr", cfg.TCPAddr, "TCP address to listen on")
	gf := newGameFlags(fs, cfg)
	fs.Parse(args)

	if err := applyGameFlags(cfg, *gf.seed, *gf.rules); err != nil {
		return err
	}
	if *players < 2 || *players > game.MaxPlayers {
		return fmt.Errorf("--players must be 2-%d", game.MaxPlayers)
	}
	cfg.Players = *players
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Printf("Hosting a %d-player game on %s. Others run: regicide join --addr <host>%s\n", *players, *addr, *addr)
	return runLocal(ctx, cfg, *addr, *gf.transcript)
}

// runLocal runs the server with this terminal as seat 0, joined to it over an
// in-memory pipe.
func runLocal(ctx context.Context, cfg *config.Config, addr, transcript string) error {
	logger, err := cfg.NewLogger("regicide")
	if err != nil {
		return err
	}
	defer logger.Sync()

	var w io.Writer
	if transcript != "" {
		f, err := os.OpenFile(transcript, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open transcript: %w", err)
		}
		defer f.Close()
		w = f
	}

	seed := cfg.NewSeed()
	logger.Info("new game", zap.Int("players", cfg.Players), zap.Uint64("seed", seed))

	serverEnd, clientEnd := net.Pipe()
	srv := &rnet.Server{
		Addr:       addr,
		Rules:      cfg.Rules(),
		Seed:       seed,
		Logger:     logger,
		Local:      serverEnd,
		Transcript: w,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
		clientEnd.Close()
	}()

	clientErr := rnet.NewClient(clientEnd, "P1", os.Stdin, os.Stdout).Run(ctx)
	cancel()
	clientEnd.Close() // unblocks a server write to the departed client
	serverErr := <-errCh
	if clientErr != nil {
		return clientErr
	}
	if serverErr != nil && !errors.Is(serverErr, context.Canceled) {
		return serverErr
	}
	return nil
}

func runJoin(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", dialAddr(cfg.TCPAddr), "server address to connect to")
	name := fs.String("name", "", "name shown to the other players")
	fs.Parse(args)

	return rnet.Connect(ctx, *addr, *name)
}

// dialAddr turns a listen address such as ":9000" into one a client can dial
// on this machine.
func dialAddr(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
