package database

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
)

// InitAsynq initializes Asynq client only if Redis is available
func InitAsynq(redisURI string, redisUp bool) *asynq.Client {
	if !redisUp || redisURI == "" {
		log.Println("⚠️ Redis not available. Asynq client will not be initialized.")
		return nil
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisURI})
	log.Println("✅ Asynq Client initialized successfully")
	return client
}

// NewAsynqServer worker ที่ประมวลผลงาน reconcile
func NewAsynqServer(redisURI string, concurrency int) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisURI},
		asynq.Config{
			Concurrency: concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
				log.Printf("❌ Task %s failed: %v", task.Type(), err)
			}),
		},
	)
}
