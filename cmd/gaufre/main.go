package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/glabrego/gaufre-cli/internal/app"
	"github.com/glabrego/gaufre-cli/internal/command"
	"github.com/glabrego/gaufre-cli/internal/config"
	"github.com/glabrego/gaufre-cli/internal/console"
	"github.com/glabrego/gaufre-cli/internal/gopher"
	"github.com/glabrego/gaufre-cli/internal/logging"
	"github.com/glabrego/gaufre-cli/internal/platform"
	"github.com/glabrego/gaufre-cli/internal/session"
	"github.com/glabrego/gaufre-cli/internal/storage"
	"github.com/glabrego/gaufre-cli/internal/tui"
	tuitheme "github.com/glabrego/gaufre-cli/internal/tui/theme"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if errors.Is(err, config.ErrUsage) {
		fmt.Fprintln(os.Stderr, config.ErrUsage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := logging.Configure(cfg.LogFile, cfg.LogLevel); err != nil {
		log.Fatalf("logging error: %v", err)
	}
	defer logging.Close()

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := repo.Init(initCtx); err != nil {
		initCancel()
		log.Fatalf("storage schema error: %v (check %s is writable)", err, cfg.DBPath)
	}
	initCancel()

	client := gopher.NewClient(cfg.Timeout, nil)
	service := app.NewService(client, repo)
	engine := session.NewEngine(service)
	interp := command.New(cfg.UI.CommandPrefix, cfg.DefaultPort)
	launcher := platform.New(cfg.Commands, cfg.DownloadDir)

	logging.L().Info().Str("start", cfg.Start.URL()).Dur("timeout", cfg.Timeout).Msg("gaufre starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Plain || !term.IsTerminal(int(os.Stdin.Fd())) {
		runner := console.NewRunner(engine, service, interp, os.Stdin, os.Stdout)
		runner.SetLauncher(launcher)
		runner.SetWidth(cfg.UI.WrapWidth)
		if err := runner.Run(ctx, cfg.Start); err != nil {
			log.Fatalf("console error: %v", err)
		}
		return
	}

	model := tui.NewModel(engine, service, interp, cfg.Start)
	model.SetLauncher(launcher)
	model.SetTheme(tuitheme.Default().WithOverrides(cfg.Styles))

	defaults := storage.UIPreferences{ShowNumbers: cfg.UI.ShowNumbers, WrapWidth: cfg.UI.WrapWidth}
	prefCtx, prefCancel := context.WithTimeout(context.Background(), 5*time.Second)
	prefs, err := service.LoadPreferences(prefCtx, defaults)
	prefCancel()
	if err != nil {
		logging.L().Warn().Err(err).Msg("could not load UI preferences, using defaults")
		prefs = defaults
	}
	model.ApplyPreferences(prefs)
	model.SetPreferencesSaver(func(p storage.UIPreferences) error {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		return service.SavePreferences(saveCtx, p)
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Fatalf("tui error: %v", err)
	}
}
