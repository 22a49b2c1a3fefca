package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/avatar-forge/internal/repositories/avatars"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	ownerID := flag.String("owner", "", "Only list avatars saved by this Discord user ID")
	flag.Parse()

	ctx := context.Background()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)
	defer client.Close()

	if _, pingErr := client.Ping(ctx).Result(); pingErr != nil {
		log.Fatalf("Failed to connect to Redis: %v", pingErr)
	}

	repo := avatars.NewRedisRepository(&avatars.RedisRepoConfig{Client: client})

	if *ownerID != "" {
		records, err := repo.ListByOwner(ctx, *ownerID)
		if err != nil {
			log.Fatalf("Failed to list avatars: %v", err)
		}
		fmt.Printf("Found %d avatars for %s:\n", len(records), *ownerID)
		for _, record := range records {
			printRecord(record)
		}
		return
	}

	// Walk every stored avatar
	var count int
	iter := client.Scan(ctx, 0, "avatar:*", 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), "avatar:")
		record, err := repo.Get(ctx, id)
		if err != nil {
			fmt.Printf("  %s: ERROR - %v\n", id, err)
			continue
		}
		printRecord(record)
		count++
	}
	if err := iter.Err(); err != nil {
		log.Fatalf("Failed to scan avatar keys: %v", err)
	}
	fmt.Printf("\nFound %d avatars\n", count)
}

func printRecord(record *avatars.Record) {
	c := record.Character
	var equipped []string
	for categoryID, items := range c.Equipped {
		equipped = append(equipped, fmt.Sprintf("%s=%s", categoryID, strings.Join(items, "+")))
	}
	slices.Sort(equipped)
	fmt.Printf("  %s owner=%s name=%q color=%d,%d,%d equipped=[%s] updated=%s\n",
		record.ID, record.OwnerID, c.Name, c.Color.R, c.Color.G, c.Color.B,
		strings.Join(equipped, " "), record.UpdatedAt.Format("2006-01-02 15:04:05"))
}
