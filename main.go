package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"chirp/feed"
)

// app carries everything a request needs. The viewer is fixed at startup and
// passed along explicitly rather than read from a global.
type app struct {
	cfg       Config
	store     Store
	viewer    feed.Viewer
	sessions  *sessions.CookieStore
	clipboard Clipboard
	pages     pages
	limiter   *rate.Limiter
}

func newApp(cfg Config, seed *Seed) (*app, error) {
	viewer, err := seed.viewer(cfg.Viewer)
	if err != nil {
		return nil, err
	}
	sessionStore, err := newStore(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg.Storage, seed)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		store:    store,
		viewer:   viewer,
		sessions: sessionStore,
		pages:    p,
		limiter:  newLimiter(cfg.Engagement),
	}
	a.clipboard = flashClipboard{a: a}
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) setupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.Handle("/", http.RedirectHandler("/home", http.StatusFound)).Methods("GET")

	post := r.Methods("POST").Subrouter()
	post.Use(a.rateLimit)
	post.HandleFunc("/compose", a.composeHandler)
	post.HandleFunc("/status/{id}/share", a.shareHandler)
	post.HandleFunc("/status/{id}/{action:like|repost|bookmark}", a.engageHandler)
	post.HandleFunc("/{handle}/follow", a.followHandler)

	r.HandleFunc("/home", a.homeHandler).Methods("GET")
	r.HandleFunc("/explore", a.exploreHandler).Methods("GET")
	r.HandleFunc("/notifications", a.notificationsHandler).Methods("GET")
	r.HandleFunc("/messages", a.messagesHandler).Methods("GET")
	r.HandleFunc("/bookmarks", a.bookmarksHandler).Methods("GET")
	r.HandleFunc("/status/{id}", a.statusHandler).Methods("GET")
	r.HandleFunc("/{handle}", a.profileHandler).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(a.notFound)
	return r
}

func setupLogging(cfg LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.WithError(err).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func loadSeed(path string) (*Seed, error) {
	if path == "" {
		return parseSeed(defaultSeed)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSeed(b)
}

// loadConfig layers the config file, the environment and the --addr flag
// over the defaults, then validates the result.
func loadConfig(path, addr string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	cfg.ResolveEnv()
	if addr != "" {
		cfg.Server.Addr = addr
	}
	return cfg, cfg.Validate()
}

func main() {
	configPath := pflag.StringP("config", "c", "", "path to YAML config")
	addr := pflag.StringP("addr", "a", "", "listen address (overrides config)")
	dump := pflag.BoolP("dump", "i", false, "dump all posts and authors to stdout and exit")
	pflag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("load .env")
	}

	cfg, err := loadConfig(*configPath, *addr)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	setupLogging(cfg.Log)

	seed, err := loadSeed(cfg.Storage.SeedPath)
	if err != nil {
		log.WithError(err).Fatal("load seed")
	}

	if *dump {
		if err := dumpPosts(os.Stdout, seed); err != nil {
			fmt.Fprintf(os.Stderr, "dump: %s\n", err)
			os.Exit(1)
		}
		return
	}

	a, err := newApp(cfg, seed)
	if err != nil {
		log.WithError(err).Fatal("start")
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{"addr": cfg.Server.Addr, "viewer": a.viewer.Handle, "storage": cfg.Storage.Driver}).
			Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("serve")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		log.WithError(err).Warn("shutdown")
	}
	log.Info("server closed")
}
