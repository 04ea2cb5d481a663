package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rockola/api"
	"rockola/config"
	"rockola/handlers"
	"rockola/internal/database"
	"rockola/services/credits"
	"rockola/services/events"
	"rockola/services/history"
	"rockola/services/idle"
	"rockola/services/indexer"
	"rockola/services/library"
	"rockola/services/player"
	"rockola/services/youtube"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {

	portOverride := flag.Int("port", 0, "override server port from config")
	skipScan := flag.Bool("no-scan", false, "skip the initial media scan on startup")
	flag.Parse()

	fmt.Println("🎵 rockola backend starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("ROCKOLA_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			// Redirect standard log to both console and file
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	fs := afero.NewOsFs()

	// Play/coin history on sqlite
	db, err := database.Open(context.Background(), settings.History.Path)
	if err != nil {
		log.Fatalf("failed to open history database: %v", err)
	}
	defer db.Close()
	historyService := history.NewService(db)

	// Library and indexer
	libraryService := library.NewService()
	indexerService := indexer.NewService(fs)

	if !*skipScan {
		roots := indexer.RootsFromSettings(settings)
		if len(roots) == 0 {
			log.Printf("[main] no media roots configured; library starts empty")
		} else {
			scanCtx, scanCancel := context.WithTimeout(context.Background(), 10*time.Minute)
			entries, err := indexerService.Scan(scanCtx, roots)
			scanCancel()
			if err != nil {
				log.Printf("[main] initial scan failed: %v", err)
			} else {
				libraryService.Replace(entries)
				log.Printf("[main] initial scan complete: %d entries", len(entries))
			}
		}
	}

	// Player coordinator and its collaborators
	creditsService := credits.NewService(settings)
	playerService := player.NewService(creditsService, historyService)
	youtubeService := youtube.NewService(settings.YouTubeAPIKey, nil)

	// Websocket fan-out of player state
	hub := events.NewHub(playerService.Snapshot)
	playerService.AddObserver(hub)

	// Idle auto-play scheduler
	idleService := idle.NewService(playerService, libraryService, youtubeService, settings)
	playerService.AddObserver(idleService)

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	go hub.Run(runCtx)
	idleService.Start(runCtx)

	// Handlers
	settingsHandler := handlers.NewSettingsHandler(cfgManager)
	settingsHandler.SetCreditsService(creditsService)
	settingsHandler.SetIdleService(idleService)
	settingsHandler.SetYouTubeService(youtubeService)
	mediaHandler := handlers.NewMediaHandler(libraryService, indexerService, cfgManager)
	streamHandler := handlers.NewStreamHandler(libraryService, fs)
	coverHandler := handlers.NewCoverHandler(libraryService, fs)
	playerHandler := handlers.NewPlayerHandler(playerService, libraryService, idleService)
	youtubeHandler := handlers.NewYouTubeHandler(youtubeService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	healthHandler := handlers.NewHealthHandler(libraryService, idleService, hub)

	r := mux.NewRouter()
	api.Register(
		r,
		settingsHandler,
		mediaHandler,
		streamHandler,
		coverHandler,
		playerHandler,
		youtubeHandler,
		historyHandler,
		healthHandler,
		hub,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for streaming
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	idleService.Stop()
	runCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
