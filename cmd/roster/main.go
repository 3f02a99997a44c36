package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/arvergara/hualpen-roster/internal/api"
	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/job"
	"github.com/arvergara/hualpen-roster/internal/repository/memory"
)

func main() {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	redisAddr := os.Getenv("ROSTER_REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	runs := memory.NewRunRepository()

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer client.Close()
	scheduler := job.NewScheduler(client)

	handlers := job.NewHandlers(runs, cfg)
	mux := asynq.NewServeMux()
	mux.HandleFunc(job.TaskTypeRefine, handlers.HandleRefine)

	worker := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{Concurrency: 4},
	)
	go func() {
		if err := worker.Run(mux); err != nil {
			log.Fatalf("asynq worker stopped: %v", err)
		}
	}()

	server := api.NewServer(cfg, runs, scheduler)

	addr := os.Getenv("ROSTER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		log.Printf("roster API listening on %s", addr)
		if err := server.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	worker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Echo.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}
}
