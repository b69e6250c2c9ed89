package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"Vsa/internal/auth"
	"Vsa/internal/calc/batch"
	"Vsa/internal/calc/calibrate"
	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/presets"
	"Vsa/internal/calc/report"
	"Vsa/internal/calc/siteclass"
	"Vsa/internal/calc/station"
	"Vsa/internal/calc/vsa"
	"Vsa/internal/config"
	"Vsa/internal/logging"
	"Vsa/internal/profile"
	"Vsa/internal/repo"
)

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

type doc struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func listDocs(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs := []doc{}
		err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			docs = append(docs, doc{Name: d.Name(), Path: path})
			return nil
		})
		if err != nil {
			slog.Warn("list docs", "dir", dir, "error", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docs)
	}
}

func HandleList(m *mux.Router, cfg config.Config, store *repo.Postgres) {
	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: store}
	profileH := &profile.ProfileHandler{Repo: store, DefaultRho: cfg.DefaultRho}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	api := m.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	vsaH := &vsa.Handler{}
	presetsH := &presets.Handler{}
	api.HandleFunc("/vsa/calc", vsaH.Calc).Methods("POST")
	api.HandleFunc("/vsa/validate", vsaH.Validate).Methods("POST")
	api.HandleFunc("/presets", presetsH.List).Methods("GET")
	api.HandleFunc("/presets/{name}", presetsH.Get).Methods("GET")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.RequireUser)

	secureApi.HandleFunc("/profiles", profileH.List).Methods("GET")
	secureApi.HandleFunc("/profiles", profileH.Create).Methods("POST")
	secureApi.HandleFunc("/profiles/upload", profileH.Upload).Methods("POST")
	secureApi.HandleFunc("/profiles/{id:[0-9]+}", profileH.Get).Methods("GET")
	secureApi.HandleFunc("/profiles/{id:[0-9]+}", profileH.Delete).Methods("DELETE")
	secureApi.HandleFunc("/profiles/{id:[0-9]+}/compute", profileH.Compute).Methods("POST")
	secureApi.HandleFunc("/profiles/{id:[0-9]+}/runs", profileH.Runs).Methods("GET")

	calibrateH := &calibrate.Handler{}
	deviationH := &deviation.Handler{}
	batchH := &batch.Handler{}
	stationH := &station.Handler{}
	reportH := &report.Handler{}
	siteH := &siteclass.Handler{}

	secureApi.HandleFunc("/tools/calibrate", calibrateH.Depth).Methods("POST")
	secureApi.HandleFunc("/tools/deviation/analyze", deviationH.Analyze).Methods("POST")
	secureApi.HandleFunc("/tools/deviation/suggest", deviationH.Suggest).Methods("POST")
	secureApi.HandleFunc("/tools/batch/presets", batchH.Presets).Methods("POST")
	secureApi.HandleFunc("/tools/batch/profiles", batchH.Profiles).Methods("POST")
	secureApi.HandleFunc("/tools/stations/import", stationH.Import).Methods("POST")
	secureApi.HandleFunc("/tools/stations/export", stationH.Export).Methods("POST")
	secureApi.HandleFunc("/tools/stations/sample", stationH.Sample).Methods("GET")
	secureApi.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/tools/report/json", reportH.JSON).Methods("POST")
	secureApi.HandleFunc("/tools/siteclass", siteH.Classify).Methods("POST")

	secureApi.HandleFunc("/docs/list", listDocs(cfg.DocsDir)).Methods("GET")

	static := func(sub string) string { return filepath.Join(cfg.StaticDir, sub) }

	authFileServer := http.FileServer(http.Dir(static("auth")))
	m.PathPrefix("/auth/").
		Handler(authEnv.RedirectIfLoggedIn(http.StripPrefix("/auth", authFileServer)))
	profileFileServer := http.FileServer(http.Dir(static("profile")))
	m.PathPrefix("/profile/").
		Handler(authEnv.AuthMiddleware(http.StripPrefix("/profile", profileFileServer)))
	m.PathPrefix("/docs/").
		Handler(authEnv.AuthMiddleware(http.StripPrefix("/docs", http.FileServer(http.Dir(cfg.DocsDir)))))
	m.PathPrefix("/").
		Handler(http.FileServer(http.Dir(static("main"))))
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err := cfg.RequireServer(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	store := repo.NewPostgres(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	m := mux.NewRouter()
	HandleList(m, cfg, store)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           CORS(m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr)
		errc <- server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received, closing active connections")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

func main() {
	if err := run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
