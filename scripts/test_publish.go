// +build ignore

// Публикует push-токен в стрим live activity, как это делает устройство.
//
//	go run scripts/test_publish.go -activity <id> -token deadbeef
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	activityID := flag.String("activity", "", "Activity ID returned by POST /api/v1/activities")
	tokenHex := flag.String("token", "", "Push token, hex encoded")
	prefix := flag.String("prefix", "stream:activity:tokens:", "Token stream prefix")
	flag.Parse()

	if _, err := uuid.Parse(*activityID); err != nil {
		log.Fatalf("Invalid activity id %q: %v", *activityID, err)
	}
	token, err := hex.DecodeString(*tokenHex)
	if err != nil || len(token) == 0 {
		log.Fatalf("Invalid token %q: must be non-empty hex", *tokenHex)
	}

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	stream := *prefix + *activityID
	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": string(token)},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish token: %v", err)
	}

	fmt.Printf("Published token to %s (message %s)\n", stream, id)
}
