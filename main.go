// Package main provides the entry point for the Plan Annotator application.
package main

import (
	"flag"
	"log"
	"os"
	"os/user"
	"time"

	fyneapp "fyne.io/fyne/v2/app"

	"plan-annotator/internal/app"
	"plan-annotator/internal/config"
	"plan-annotator/internal/importer"
	"plan-annotator/internal/logger"
	"plan-annotator/internal/persist"
	"plan-annotator/internal/task"
	"plan-annotator/internal/version"
	"plan-annotator/ui/mainwindow"
)

const appTitle = "Plan Annotator"

func main() {
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	projectID := flag.String("project", "default", "project to open")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)
	logger.SetVerbose(*verbose)

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Config error, using defaults: %v", err)
	}

	kv, closeStore := openStore(cfg)
	defer closeStore()

	gateway := persist.NewGateway(kv, cfg.Import.MaxEmbedBytes)
	controller := app.NewController(cfg, gateway, task.LogConverter{}, *projectID, currentUser())
	controller.OpenProject(*projectID)

	imp := importer.New(cfg.Import.MaxEdgePixels, cfg.Import.MaxEmbedBytes)

	fyneApp := fyneapp.New()
	win := mainwindow.New(fyneApp, controller, imp)

	setupHotReload()

	win.ShowAndRun()
}

// openStore selects the configured durable store, falling back to the
// JSON file store when SQLite cannot be opened.
func openStore(cfg config.Config) (persist.KV, func()) {
	if cfg.Storage.Backend == "sqlite" {
		store, err := persist.OpenSQLiteStore(cfg.DataDir())
		if err == nil {
			log.Printf("Using SQLite store at %s", store.Path())
			return store, func() { store.Close() }
		}
		log.Printf("SQLite store unavailable, falling back to file store: %v", err)
	}
	return persist.OpenFileStore(cfg.DataDir()), func() {}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// setupHotReload configures automatic restart detection when the binary
// is recompiled.
func setupHotReload() {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: new binary detected, restarting")
		if err := reloader.Restart(); err != nil {
			log.Printf("Hot reload: restart failed: %v", err)
		}
	})
	reloader.Start()
}
