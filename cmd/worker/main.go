package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"deals_api/internal/app/service"
	"deals_api/internal/app/worker"
	"deals_api/internal/domain/repository"
	"deals_api/internal/platform/config"
	"deals_api/internal/platform/database"
	"deals_api/internal/platform/queue"
)

// Standalone load-log worker. Run it with EMBEDDED_WORKER=false on the API.
func main() {
	log.Println("Load-log worker starting...")
	config.Load()

	database.Connect()
	defer database.Close()
	database.Migrate()

	queue.ConnectRedis()
	defer queue.CloseRedis()

	loadLogService := service.NewLoadLogService(repository.NewPgLoadLogRepository(database.Gorm))
	loadLogWorker := worker.NewLoadLogWorker(queue.RDB, loadLogService)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()
		loadLogWorker.Start(ctx)
	}()

	<-sigs
	log.Println("Shutdown signal received.")
	cancel()

	wg.Wait()
	log.Println("Worker exited cleanly.")
}
