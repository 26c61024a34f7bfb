package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/lox/unoforbots/cmd/uno/shared"
	"github.com/lox/unoforbots/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string `help:"HCL configuration file" default:"uno.hcl" env:"UNO_CONFIG" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error); overrides the config file" env:"UNO_LOG_LEVEL"`
	LogFile  string `help:"Write logs to this file instead of stderr" env:"UNO_LOG_FILE" type:"path"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Train    TrainCmd         `cmd:"" help:"Train the policy by self-play"`
	Play     PlayCmd          `cmd:"" help:"Play against AI opponents"`
	Simulate SimulateCmd      `cmd:"" help:"Evaluate players over many seeded games"`
	Inspect  InspectCmd       `cmd:"" help:"Show saved training progress and replay memory"`
}

// env holds the loaded configuration and root logger for a command.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	close  func() error
}

// setup loads the configuration file and builds the logger. logFile is used
// when neither the flags nor the file name one.
func (g *Globals) setup(logFile string) (*env, error) {
	cfg, err := config.LoadConfig(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFile != "" {
		cfg.Log.File = g.LogFile
	}
	if cfg.Log.File == "" {
		cfg.Log.File = logFile
	}

	logger, closeFn, err := shared.SetupLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, close: closeFn}, nil
}

func main() {
	// A missing .env file is fine; UNO_* variables may come from the shell.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("uno"),
		kong.Description("Uno engine with a self-play trained policy"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
