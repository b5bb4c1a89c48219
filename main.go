package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/docker/go-units"
	httpservermod "github.com/example/upload-staging-demo/modules/httpserver"
	stagingmod "github.com/example/upload-staging-demo/modules/staging"
	"github.com/example/upload-staging-demo/modules/transport"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	httpPort := getEnvInt("HTTP_PORT", 3000)
	maxUploadSize := getEnvBytes("MAX_UPLOAD_SIZE", 64*units.MiB)
	storagePath := getEnv("STORAGE_PATH", "/tmp/upload-staging-demo")
	latency := getEnvDuration("SIMULATED_LATENCY", transport.DefaultLatency)

	mode, err := httpservermod.ParseMode(getEnv("UI_MODE", string(httpservermod.ModeRouted)))
	if err != nil {
		log.Fatalf("Invalid UI_MODE: %v", err)
	}

	log.Println("=== Upload Staging Demo ===")
	log.Printf("HTTP Port: %d", httpPort)
	log.Printf("UI Mode: %s", mode)
	log.Printf("Simulated Latency: %s", latency)
	log.Printf("Max Multipart Memory: %s", units.BytesSize(float64(maxUploadSize)))
	log.Printf("Storage Path: %s", storagePath)

	// Create mono application with embedded NATS JetStream
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithJetStreamStorageDir(storagePath),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Create modules
	stagingModule := stagingmod.NewModule(transport.NewSimulated(latency), app.Logger())
	httpServerModule := httpservermod.NewModule(httpPort, mode, maxUploadSize, app.Logger())

	// Register modules. The HTTP module receives the staging service
	// container through its declared dependency.
	if err := app.Register(stagingModule); err != nil {
		log.Fatalf("Failed to register staging module: %v", err)
	}
	if err := app.Register(httpServerModule); err != nil {
		log.Fatalf("Failed to register http-server module: %v", err)
	}

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	widget := mode.WidgetPath()
	log.Println("=== Application Started ===")
	log.Printf("UI available at http://localhost:%d%s", httpPort, widget)
	log.Println("Endpoints:")
	if mode == httpservermod.ModeRouted {
		log.Println("  GET    /                          - Welcome page")
	}
	log.Printf("  GET    %-26s - Upload widget", widget)
	log.Println("  GET    /health                    - Health check")
	log.Println("  GET    /api/v1/staging            - Current staging state")
	log.Println("  POST   /api/v1/staging/files      - Offer files (multipart or JSON)")
	log.Println("  POST   /api/v1/staging/upload     - Start an upload cycle")
	log.Println("  GET    /api/v1/staging/events     - Progress feed (SSE)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")

	// Setup graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	// Wait for shutdown signal
	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBytes returns environment variable as a byte count or default.
// Accepts plain numbers and sizes such as "64MiB" or "512k".
func getEnvBytes(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if size, err := units.RAMInBytes(value); err == nil && size > 0 {
			return size
		}
		log.Printf("Warning: invalid size value for %s: %s, using default: %s",
			key, value, units.BytesSize(float64(defaultValue)))
	}
	return defaultValue
}

// getEnvDuration returns environment variable as a duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
