package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogstream-backend/internal/config"
	"blogstream-backend/internal/database"
	"blogstream-backend/internal/handlers"
	"blogstream-backend/internal/middleware"
	"blogstream-backend/internal/router"
	"blogstream-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Blog Stream Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Language Model Provider ────
	var llm services.LLMProvider
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		gemini, err := services.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		llm = gemini
	default:
		llm = services.NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	}
	log.Printf("✓ %s provider initialized (model %s)", cfg.LLMProvider, llm.ModelName())

	// ──── Step 3: Initialize Image Resolver ────
	pexels := services.NewPexelsClient(cfg.PexelsAPIKey, cfg.PexelsBaseURL)
	log.Println("✓ Pexels client initialized")

	// ──── Step 4: Initialize Rate Limiter ────
	memoryCounter := middleware.NewMemoryCounter(time.Minute)
	defer memoryCounter.Close()
	var counter middleware.Counter = memoryCounter
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		counter = middleware.NewRedisCounter(redisClient, time.Minute)
		log.Println("✓ Redis connected, rate limits shared across instances")
	}
	generateLimiter := middleware.NewRateLimiter(counter, cfg.GenerateRateLimit)

	// ──── Initialize Services & Handlers ────
	blogService := services.NewBlogService(llm, pexels, cfg.ImageLookupConcurrency)
	generateHandler := handlers.NewGenerateHandler(blogService)
	streamHandler := handlers.NewStreamHandler(blogService)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(generateHandler, streamHandler, generateLimiter)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Blog Stream Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  HTTP: POST http://localhost:%s/generate", cfg.Port)
	log.Printf("  WS:   ws://localhost:%s/ws/generate", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
