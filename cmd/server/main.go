package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"vehicle-route-service/internal/adapters/cache"
	"vehicle-route-service/internal/adapters/osrm"
	"vehicle-route-service/internal/api"
	"vehicle-route-service/internal/config"
	"vehicle-route-service/internal/platform/db"
	"vehicle-route-service/internal/ports"
	"vehicle-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, OSRM) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	buffer := config.GetSeconds("STAGGER_BUFFER_SECONDS", services.DefaultDepartureBuffer)

	osrmBase := os.Getenv("OSRM_BASE_URL")
	if strings.TrimSpace(osrmBase) == "" {
		log.Fatal("OSRM_BASE_URL is required")
	}

	// Matrix cache tiers are optional: Redis when configured, else Postgres,
	// else the provider hits OSRM every time.
	var matrixCache ports.MatrixCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		defer client.Close()
		matrixCache = cache.NewRedisMatrixCache(client)
		log.Printf("matrix cache backend=redis addr=%s", addr)
	} else if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		sqlDB, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer sqlDB.Close()

		if err := cache.InitSchema(sqlDB); err != nil {
			log.Fatal(err)
		}
		matrixCache = cache.NewSQLMatrixCache(sqlDB)
		log.Println("matrix cache backend=postgres")
	} else {
		log.Println("matrix cache backend=none")
	}

	provider, err := osrm.NewOSRMProvider(osrmBase, matrixCache)
	if err != nil {
		log.Fatal(err)
	}

	registry := services.NewRegistry()
	router := api.NewRouter(registry, provider, buffer)

	// Write timeout covers cold-cache plan submission (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
