package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/regicide/internal/game"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REGICIDE_"

// Config holds all configuration shared by the regicide binaries.
type Config struct {
	// Game setup
	Players   int
	Seed      uint64 // 0 picks a random seed per game
	RulesFile string

	// Hosts
	TCPAddr     string
	WebAddr     string
	ActionRate  float64 // sustained actions per second per connection
	ActionBurst int

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // console or json

	Environment string // development or production

	rules *RulesFile
}

// RulesFile is the YAML layout of an optional rules override file. Unset
// fields keep the defaults for the configured player count.
type RulesFile struct {
	Players       *int                       `yaml:"players"`
	MaxHandSize   *int                       `yaml:"max_hand_size"`
	TavernJesters *int                       `yaml:"tavern_jesters"`
	JesterCharges *int                       `yaml:"jester_charges"`
	LogTail       *int                       `yaml:"log_tail"`
	Enemies       map[string]game.EnemyStats `yaml:"enemies"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Players:     1,
		TCPAddr:     ":9000",
		WebAddr:     ":8080",
		ActionRate:  5,
		ActionBurst: 10,
		LogLevel:    "info",
		LogFormat:   "console",
		Environment: "development",
	}
}

// Load builds the configuration: defaults, then the rules file, then
// environment variables. envFiles are loaded with godotenv first (".env" when
// none is given); a missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(EnvPrefix + "RULES_FILE"); path != "" {
		if err := cfg.LoadRulesFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadRulesFile reads a YAML rules file. A players entry becomes the
// configured player count.
func (c *Config) LoadRulesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rules file: %w", err)
	}
	rf, err := ParseRulesFile(data)
	if err != nil {
		return err
	}
	c.RulesFile = path
	c.rules = rf
	if rf.Players != nil {
		c.Players = *rf.Players
	}
	return nil
}

// ParseRulesFile decodes rules YAML. Enemy keys are jack, queen and king.
func ParseRulesFile(data []byte) (*RulesFile, error) {
	var rf RulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules YAML: %w", err)
	}
	for name := range rf.Enemies {
		if _, err := enemyRank(name); err != nil {
			return nil, err
		}
	}
	return &rf, nil
}

func enemyRank(name string) (game.Rank, error) {
	switch strings.ToLower(name) {
	case "jack":
		return game.Jack, nil
	case "queen":
		return game.Queen, nil
	case "king":
		return game.King, nil
	default:
		return game.RankNone, fmt.Errorf("unknown enemy %q (want jack, queen or king)", name)
	}
}

// Apply overlays the file onto a rule set.
func (rf *RulesFile) Apply(r game.Rules) game.Rules {
	if rf == nil {
		return r
	}
	if rf.MaxHandSize != nil {
		r.MaxHandSize = *rf.MaxHandSize
	}
	if rf.TavernJesters != nil {
		r.TavernJesters = *rf.TavernJesters
	}
	if rf.JesterCharges != nil {
		r.JesterCharges = *rf.JesterCharges
	}
	if rf.LogTail != nil {
		r.LogTail = *rf.LogTail
	}
	if len(rf.Enemies) > 0 {
		table := make(map[game.Rank]game.EnemyStats, len(r.Enemies))
		for rank, stats := range r.Enemies {
			table[rank] = stats
		}
		for name, stats := range rf.Enemies {
			rank, _ := enemyRank(name)
			table[rank] = stats
		}
		r.Enemies = table
	}
	return r
}

// Rules returns the game rules for the configured player count with any
// rules file applied.
func (c *Config) Rules() game.Rules {
	return c.rules.Apply(game.DefaultRules(c.Players))
}

// Validate checks the configuration and the rules it produces.
func (c *Config) Validate() error {
	if c.Players < game.MinPlayers || c.Players > game.MaxPlayers {
		return fmt.Errorf("%sPLAYERS must be %d-%d, got %d", EnvPrefix, game.MinPlayers, game.MaxPlayers, c.Players)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("%sLOG_FORMAT must be console or json, got %q", EnvPrefix, c.LogFormat)
	}
	if c.ActionRate <= 0 {
		return fmt.Errorf("%sACTION_RATE must be positive", EnvPrefix)
	}
	if c.ActionBurst < 1 {
		return fmt.Errorf("%sACTION_BURST must be at least 1", EnvPrefix)
	}
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

// NewSeed returns the configured seed, or a fresh random one when none is set.
// Logging the result makes any game reproducible.
func (c *Config) NewSeed() uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return rand.Uint64()
}

// IsDevelopment reports whether running in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("PLAYERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPLAYERS: %w", EnvPrefix, err)
		}
		c.Players = n
	}
	if v, ok := lookup("SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		c.Seed = n
	}
	if v, ok := lookup("ACTION_RATE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sACTION_RATE: %w", EnvPrefix, err)
		}
		c.ActionRate = f
	}
	if v, ok := lookup("ACTION_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sACTION_BURST: %w", EnvPrefix, err)
		}
		c.ActionBurst = n
	}
	c.TCPAddr = getEnvWithDefault("TCP_ADDR", c.TCPAddr)
	c.WebAddr = getEnvWithDefault("WEB_ADDR", c.WebAddr)
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvWithDefault("LOG_FORMAT", c.LogFormat)
	c.Environment = getEnvWithDefault("ENV", c.Environment)
	return nil
}

func lookup(key string) (string, bool) {
	v := os.Getenv(EnvPrefix + key)
	return v, v != ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return defaultValue
}

// --- Logging ---

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("%sLOG_LEVEL must be debug, info, warn or error, got %q", EnvPrefix, s)
	}
}

// NewLogger builds the operational zap logger for a binary.
func (c *Config) NewLogger(service string) (*zap.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if c.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.String("service", service)), nil
}
