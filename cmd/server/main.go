package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deals_api/internal/api"
	"deals_api/internal/app/service"
	"deals_api/internal/app/worker"
	"deals_api/internal/common/security"
	"deals_api/internal/domain/repository"
	"deals_api/internal/platform/config"
	"deals_api/internal/platform/database"
	"deals_api/internal/platform/queue"
)

func main() {
	// 1. Configuration
	config.Load()
	log.Println("Configuration loaded.")

	// 2. JWT
	security.InitJWT()

	// 3. Database
	database.Connect()
	defer database.Close()
	database.Migrate()

	// 4. Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()

	// 5. Repositories
	userRepo := repository.NewPgUserRepository(database.Gorm)
	categoryRepo := repository.NewPgCategoryRepository(database.Gorm)
	productRepo := repository.NewPgProductRepository(database.Gorm)
	loadLogRepo := repository.NewPgLoadLogRepository(database.Gorm)

	denylist := security.NewRedisDenylist(queue.RDB)
	publisher := queue.NewLoadEventPublisher(queue.RDB, config.AppConfig.LoadEventsQueue)

	// 6. Services
	authService := service.NewAuthService(userRepo, denylist)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, publisher)
	loadLogService := service.NewLoadLogService(loadLogRepo)

	// 7. Load-log worker, unless cmd/worker runs it
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workerDone := make(chan struct{})
	if config.AppConfig.EmbeddedWorker {
		loadLogWorker := worker.NewLoadLogWorker(queue.RDB, loadLogService)
		go func() {
			defer close(workerDone)
			loadLogWorker.Start(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	// 8. Router & HTTP server
	router := api.NewRouter(authService, categoryService, productService, loadLogService, denylist)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server shutdown failed: %v", err)
	}
	workerCancel()
	<-workerDone

	log.Println("Server and worker stopped gracefully.")
}
