package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"microsling/frontend/render"
	"microsling/infrastructure/audit"
	httpserver "microsling/infrastructure/http"
	"microsling/infrastructure/sqlite"
)

type config struct {
	Addr          string
	SQLitePath    string
	MigrationsDir string
	EscapeHTML    bool
}

func main() {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var (
		db       *sqlite.DB
		auditSvc *audit.Service
	)
	if cfg.SQLitePath != "" {
		db, err = sqlite.OpenDB(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()

		if err := sqlite.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
		auditSvc = audit.NewService()
	} else {
		slog.Warn("SQLITE_PATH is empty; render audit disabled")
	}

	renderer := &render.Renderer{
		Diagnostics: render.SlogDiagnostics{},
		EscapeHTML:  cfg.EscapeHTML,
	}

	server := httpserver.NewServer(cfg.Addr, renderer, db, auditSvc)
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	log.Printf("microsling listening on %s", server.ListenAddr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func loadConfig(getenv func(string) string) (config, error) {
	lookup := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := config{
		Addr:          lookup("MICROSLING_ADDR", ":8080"),
		SQLitePath:    lookup("SQLITE_PATH", "microsling.db"),
		MigrationsDir: lookup("MICROSLING_MIGRATIONS_DIR", ""),
	}
	// "-" turns auditing off.
	if cfg.SQLitePath == "-" {
		cfg.SQLitePath = ""
	}

	escape, err := strconv.ParseBool(lookup("MICROSLING_ESCAPE_HTML", "false"))
	if err != nil {
		return config{}, fmt.Errorf("MICROSLING_ESCAPE_HTML: %w", err)
	}
	cfg.EscapeHTML = escape
	return cfg, nil
}
