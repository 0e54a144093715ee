package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis คืน nil ถ้าไม่ได้ตั้ง REDIS_URI หรือ ping ไม่ผ่าน (dev mode)
func InitRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		log.Println("⚠️ REDIS_URI not set. Running without Redis.")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr, // เช่น localhost:6379
		Password: "",   // ถ้าไม่มีรหัสผ่าน
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Println("⚠️ Failed to connect Redis, running without it:", err)
		_ = client.Close()
		return nil
	}

	log.Println("✅ Redis connected successfully")
	return client
}
