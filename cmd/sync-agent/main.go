package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/helio-health/patient-sync/internal/api"
	"github.com/helio-health/patient-sync/internal/config"
	"github.com/helio-health/patient-sync/internal/engine"
	"github.com/helio-health/patient-sync/internal/journal"
	"github.com/helio-health/patient-sync/internal/notify"
	"github.com/helio-health/patient-sync/internal/observer"
	"github.com/helio-health/patient-sync/internal/redisclient"
	"github.com/helio-health/patient-sync/internal/store"
)

const version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("sync-agent starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s backend=%s patient=%q",
		cfg.Env, cfg.HTTPPort, cfg.StoreBackend, cfg.PatientName)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		log.Println("connected to Redis")
		st = store.NewRedisStore(rdb, cfg.DocumentKey)
	default:
		st = store.NewFileStore(cfg.DocumentPath)
		log.Printf("watching document at %s", cfg.DocumentPath)
	}

	var j *journal.Journal
	if cfg.JournalPath != "" {
		j, err = journal.Open(cfg.JournalPath)
		if err != nil {
			// The journal is an output-only convenience; run without it.
			log.Printf("journal unavailable, continuing without it: %v", err)
			j = nil
		} else {
			defer j.Close()
		}
	}

	senders := []notify.Sender{notify.NewDesktopSender()}
	if len(cfg.NotifyWebhookURLs) > 0 {
		senders = append(senders, notify.NewWebhookSender(cfg.NotifyWebhookURLs))
	}
	prompter := notify.StaticPrompter(notify.Permission(cfg.NotifyPermission))
	dispatcher := notify.NewDispatcher(prompter, notify.PermissionDefault, senders...)
	if cfg.NotifyPermission == string(notify.PermissionGranted) {
		if err := dispatcher.Enable(rootCtx); err != nil {
			log.Printf("notifications stay off: %v", err)
		}
	}

	hub := api.NewHub()
	svc := engine.NewService(cfg.PatientName, dispatcher, j, hub)

	obs := observer.New(st, cfg.PollInterval)
	obs.Register(svc.HandleSnapshot)
	go func() {
		if err := obs.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("observer stopped: %v", err)
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Store:      st,
		Observer:   obs,
		Engine:     svc,
		Dispatcher: dispatcher,
		Journal:    j,
		Hub:        hub,
		Env:        cfg.Env,
		Version:    version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("http server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down sync-agent")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
}
