package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/paths"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
)

type CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Directory holding config.yaml." type:"path"`
	DataDir   string `help:"Directory holding habits, accounts and backups." type:"path"`
	DebugLog  bool   `name:"debug" help:"Enable debug logging to stderr."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize habitual storage."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Register cli.RegisterCmd `cmd:"" help:"Create a local account and sign in."`
	Login    cli.LoginCmd    `cmd:"" help:"Sign in."`
	Logout   cli.LogoutCmd   `cmd:"" help:"Sign out."`
	Whoami   cli.WhoamiCmd   `cmd:"" help:"Show the signed-in user."`
	Profile  cli.ProfileCmd  `cmd:"" help:"Update your name or password."`
	Habit    cli.HabitCmd    `cmd:"" help:"Manage habits and daily check-ins."`
	Progress cli.ProgressCmd `cmd:"" help:"Show today's progress and trends."`
	Backup   cli.BackupCmd   `cmd:"" help:"Manage data backups."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Debug    cli.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		errors.Fatal(err)
	}
}

func run(args []string) error {
	var cmdLine CLI
	parser, err := kong.New(&cmdLine,
		kong.Name(constants.AppName),
		kong.Description("Track daily and weekly habits from the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	appCtx, err := setup(&cmdLine)
	if err != nil {
		return err
	}

	err = ctx.Run(appCtx)
	if closeErr := appCtx.Habits.Close(); closeErr != nil {
		logger.Warn("Failed to close storage", "error", closeErr)
	}
	return err
}

// setup resolves directories and configuration and wires the stores.
// Precedence is flag, then config file, then environment, then XDG default.
func setup(cmdLine *CLI) (*cli.Context, error) {
	configDir, err := paths.ResolveConfigDir(cmdLine.ConfigDir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}

	dataDir, err := paths.ResolveDataDir(cmdLine.DataDir, cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir
	cfg.Debug = cfg.Debug || cmdLine.DebugLog

	if err := logger.Init(logger.Config{Debug: cfg.Debug, DataDir: dataDir}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("Starting habitual", "version", constants.Version, "config", config.Path(configDir), "data", dataDir, "backend", cfg.Backend)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg.Backend, dataDir)
	if err != nil {
		return nil, err
	}

	appCtx := &cli.Context{
		Config:  cfg,
		Storage: store,
		Session: session.NewLocalProvider(dataDir),
	}

	opts := []habits.Option{
		habits.WithLocation(loc),
		habits.WithPersistErrorHandler(appCtx.ReportPersistError),
	}
	if !cfg.AsyncPersist {
		opts = append(opts, habits.WithSyncPersist())
	}
	appCtx.Habits = habits.New(store, opts...)

	return appCtx, nil
}
