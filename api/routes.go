package api

import (
	"net/http"
	"net/http/pprof"

	"rockola/handlers"
	"rockola/services/events"

	"github.com/gorilla/mux"
)

// localhostOnlyMiddleware restricts access to localhost requests only
func localhostOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		// Strip port if present
		for i := len(host) - 1; i >= 0; i-- {
			if host[i] == ':' {
				host = host[:i]
				break
			}
		}
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			http.Error(w, "Debug endpoints only accessible from localhost", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	settingsHandler *handlers.SettingsHandler,
	mediaHandler *handlers.MediaHandler,
	streamHandler *handlers.StreamHandler,
	coverHandler *handlers.CoverHandler,
	playerHandler *handlers.PlayerHandler,
	youtubeHandler *handlers.YouTubeHandler,
	historyHandler *handlers.HistoryHandler,
	healthHandler *handlers.HealthHandler,
	hub *events.Hub,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/health", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/settings", settingsHandler.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.PutSettings).Methods(http.MethodPut)
	api.HandleFunc("/settings", handleOptions).Methods(http.MethodOptions)

	// Library browsing and maintenance
	api.HandleFunc("/media", mediaHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/media", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/media/genres", mediaHandler.Genres).Methods(http.MethodGet)
	api.HandleFunc("/media/genres", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/media/artists", mediaHandler.Artists).Methods(http.MethodGet)
	api.HandleFunc("/media/artists", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/media/rescan", mediaHandler.Rescan).Methods(http.MethodPost)
	api.HandleFunc("/media/rescan", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/media/{id}/stream", streamHandler.Stream).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/media/{id}/stream", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/media/{id}/cover", coverHandler.Cover).Methods(http.MethodGet)
	api.HandleFunc("/media/{id}/cover", handleOptions).Methods(http.MethodOptions)

	// Player state machine
	api.HandleFunc("/player/state", playerHandler.State).Methods(http.MethodGet)
	api.HandleFunc("/player/state", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/player/enqueue", playerHandler.Enqueue).Methods(http.MethodPost)
	api.HandleFunc("/player/enqueue", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/player/next", playerHandler.Next).Methods(http.MethodPost)
	api.HandleFunc("/player/next", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/player/queue/{id}", playerHandler.RemoveQueued).Methods(http.MethodDelete)
	api.HandleFunc("/player/queue/{id}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/player/error", playerHandler.PlaybackError).Methods(http.MethodPost)
	api.HandleFunc("/player/error", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/player/coin", playerHandler.Coin).Methods(http.MethodPost)
	api.HandleFunc("/player/coin", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/player/nav", playerHandler.Nav).Methods(http.MethodPost)
	api.HandleFunc("/player/nav", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/player/pause", playerHandler.Pause).Methods(http.MethodPost)
	api.HandleFunc("/player/pause", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/player/tick", playerHandler.Tick).Methods(http.MethodPost)
	api.HandleFunc("/player/tick", handleOptions).Methods(http.MethodOptions)

	// Remote video surface
	api.HandleFunc("/youtube/trending", youtubeHandler.Trending).Methods(http.MethodGet)
	api.HandleFunc("/youtube/trending", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/youtube/search", youtubeHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/youtube/search", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/youtube/suggest", youtubeHandler.Suggest).Methods(http.MethodGet)
	api.HandleFunc("/youtube/suggest", handleOptions).Methods(http.MethodOptions)

	// Accounting
	api.HandleFunc("/history", historyHandler.Recent).Methods(http.MethodGet)
	api.HandleFunc("/history", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/history/coins", historyHandler.Coins).Methods(http.MethodGet)
	api.HandleFunc("/history/coins", handleOptions).Methods(http.MethodOptions)

	// Websocket feed of player state changes
	api.Handle("/events", hub)

	// Pprof debug endpoints for profiling (localhost only)
	pprofRouter := api.PathPrefix("/debug/pprof").Subrouter()
	pprofRouter.Use(localhostOnlyMiddleware)
	pprofRouter.HandleFunc("/", pprof.Index)
	pprofRouter.HandleFunc("/profile", pprof.Profile)
	pprofRouter.HandleFunc("/goroutine", pprof.Handler("goroutine").ServeHTTP)
	pprofRouter.HandleFunc("/heap", pprof.Handler("heap").ServeHTTP)
}
