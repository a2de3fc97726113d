package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chatx/chatx/internal/chat"
	"github.com/chatx/chatx/internal/client"
	"github.com/chatx/chatx/internal/config"
	"github.com/chatx/chatx/internal/kv"
	"github.com/chatx/chatx/internal/segment"
	"github.com/chatx/chatx/internal/store"
	"github.com/chatx/chatx/internal/tui"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to chatx.toml")
	logPath := flag.String("log", "chatx.log", "log file path")
	flag.Parse()

	// The terminal belongs to the TUI, so logs go to a file.
	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{*logPath}
	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var medium kv.Store
	medium, err = kv.NewSQLite(cfg.Client.DatabasePath)
	if err != nil {
		// Durability is best-effort; an unusable database degrades the
		// session to memory-only state rather than refusing to start.
		logger.Warn("database unavailable, running without durability",
			zap.String("path", cfg.Client.DatabasePath),
			zap.Error(err))
		medium = kv.NewMemory()
	}
	defer medium.Close()

	adapter := store.New(medium, logger)
	completer := client.NewHTTP(cfg.Client.ServerURL,
		time.Duration(cfg.Client.RequestTimeout)*time.Second)

	manager, err := chat.NewManager(adapter, completer, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to restore conversations: %v\n", err)
		os.Exit(1)
	}

	model := tui.New(manager, segment.New(cfg.Client.MediaURL),
		cfg.Client.WindowSize, adapter.Failures())

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("TUI exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "chatx: %v\n", err)
		os.Exit(1)
	}
}
