package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/artxeweb/comparaelprecio-api/internal/business/catalog"
	"github.com/artxeweb/comparaelprecio-api/internal/platform/cache"
	"github.com/artxeweb/comparaelprecio-api/internal/platform/config"
	firestoreclient "github.com/artxeweb/comparaelprecio-api/internal/platform/firestore"
	apirouter "github.com/artxeweb/comparaelprecio-api/internal/platform/http"
	"github.com/artxeweb/comparaelprecio-api/internal/platform/worker"
	"github.com/artxeweb/comparaelprecio-api/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	var store cache.Store
	switch cfg.CacheBackend {
	case config.CacheBackendSQLite:
		sqliteStore, err := repository.NewSQLiteCache(cfg.CacheDBPath)
		if err != nil {
			log.Fatalf("sqlite cache init: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		log.Printf("cache backend sqlite at %s", cfg.CacheDBPath)

	case config.CacheBackendFirestore:
		creds, credsSource, err := cfg.FirebaseCredentialsJSON()
		if err != nil {
			log.Fatalf("firebase credentials: %v", err)
		}
		firestoreClient, err := firestoreclient.New(ctx, cfg.FirebaseProjectID, creds)
		if err != nil {
			log.Fatalf("firestore init: %v", err)
		}
		defer firestoreClient.Close()
		if err := firestoreclient.Ping(ctx, firestoreClient); err != nil {
			log.Fatalf("firestore ping: %v", err)
		}
		store = repository.NewFirestoreCache(firestoreClient)
		log.Printf("cache backend firestore project %s using %s credentials", cfg.FirebaseProjectID, credsSource)

	default:
		store = cache.NewMemory()
		log.Printf("cache backend memory")
	}

	ttlCache := cache.New(store, time.Duration(cfg.CacheTTLMinutes)*time.Minute, nil)
	workerClient := worker.New(nil, worker.Config{
		BaseURL: cfg.WorkerBaseURL,
		Cache:   ttlCache,
	})

	catalogSvc := catalog.NewService(workerClient)
	sessions := catalog.NewSessionRegistry(workerClient)

	router := apirouter.NewRouter(catalogSvc, sessions, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on :%s", cfg.Port)

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Println("server exited")
}
