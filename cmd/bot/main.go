package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/avatar-forge/internal/config"
	"github.com/KirkDiggler/avatar-forge/internal/handlers/discord"
	"github.com/KirkDiggler/avatar-forge/internal/ratelimit"
	"github.com/KirkDiggler/avatar-forge/internal/repositories/avatars"
	"github.com/KirkDiggler/avatar-forge/internal/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Application ID: %s", cfg.Discord.AppID)
	if cfg.Discord.GuildID != "" {
		log.Printf("Guild ID: %s", cfg.Discord.GuildID)
	}

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	providerConfig := &services.ProviderConfig{
		Assets: &cfg.Assets,
	}

	// Keep Redis client for cleanup
	redisClient := connectRedis(cfg.Redis)
	if redisClient != nil {
		providerConfig.AvatarRepository = avatars.NewRedisRepository(&avatars.RedisRepoConfig{
			Client: redisClient,
			TTL:    cfg.Redis.AvatarTTL,
		})
		log.Println("Using Redis for persistence")
	} else {
		log.Println("Using in-memory avatar storage, saves are lost on restart")
	}

	provider, err := services.NewProvider(context.Background(), providerConfig)
	if err != nil {
		log.Fatalf("Failed to load assets: %v", err)
	}

	var limitStore ratelimit.Store
	if redisClient != nil {
		limitStore = ratelimit.NewRedisStore(redisClient)
	}
	limiter := ratelimit.New(&ratelimit.Config{
		Store:       limitStore,
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window,
	})

	handler := discord.NewHandler(&discord.HandlerConfig{
		AvatarService: provider.AvatarService,
		RateLimiter:   limiter,
	})

	dg.AddHandler(discord.RecoverMiddleware("interaction", handler.HandleInteraction))

	err = dg.Open()
	if err != nil {
		log.Printf("Failed to open Discord connection: %v", err)
		return
	}
	defer func() {
		clientErr := dg.Close()
		if clientErr != nil {
			log.Printf("Failed to close Discord connection: %v", clientErr)
		}
	}()

	// Use empty string for global commands, or set a specific guild ID for testing
	if err := handler.RegisterCommands(dg, cfg.Discord.GuildID); err != nil {
		log.Printf("Failed to register commands: %v", err)
		return
	}

	if cfg.Discord.GuildID != "" {
		log.Printf("Registered commands for guild: %s", cfg.Discord.GuildID)
	} else {
		log.Println("Registered global commands (may take up to 1 hour to propagate)")
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	fmt.Println("Shutting down...")

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		} else {
			log.Println("Closed Redis connection")
		}
	}
}

// connectRedis returns a live client, or nil when Redis is not configured or unreachable
func connectRedis(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled() {
		log.Println("No REDIS_URL or REDIS_ADDR found")
		return nil
	}

	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			log.Printf("Failed to parse Redis URL: %v", err)
			return nil
		}
		opts = parsed
	}

	log.Printf("Connecting to Redis at: %s", opts.Addr)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		_ = client.Close()
		return nil
	}

	log.Println("Successfully connected to Redis")
	return client
}
