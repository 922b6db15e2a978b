package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file:", err)
	}

	fmt.Println("✅ .env loaded successfully!")

	// Session token
	if os.Getenv("SESSION_TOKEN") == "" {
		log.Fatal("SESSION_TOKEN not found")
	}
	fmt.Println("✅ SESSION_TOKEN found!")

	// Backend reachability
	baseURL := os.Getenv("BACKEND_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	fmt.Println("Checking backend at", baseURL, "...")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		log.Fatal("Can't reach backend:", err)
	}
	resp.Body.Close()
	fmt.Printf("✅ Backend answered with status %d\n", resp.StatusCode)

	// Redis (optional)
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		fmt.Println("REDIS_URL not set, skipping cache check")
		return
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Bad REDIS_URL:", err)
	}

	rdb := redis.NewClient(opts)
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Can't reach Redis:", err)
	}
	fmt.Println("✅ Connected to Redis via .env!")
}
