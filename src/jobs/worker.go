package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"staffclock/src/models"
	"staffclock/src/repository"

	"github.com/hibiken/asynq"
)

// SplitApplier เขียน split plan แบบ idempotent
type SplitApplier interface {
	ApplySplit(ctx context.Context, plan models.SplitPlan) ([]string, error)
}

// HandleCompleteSplitTask เขียน record ต่อเนื่องที่ยังขาดของ split ให้ครบ
func HandleCompleteSplitTask(repo SplitApplier) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CompleteSplitPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			log.Println("❌ Payload decode error:", err)
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		plan := payload.Plan

		ids, err := repo.ApplySplit(ctx, plan)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.Println("⚠️ Split source record not found. Skipping task:", plan.SplitID)
				return nil
			}
			log.Println("❌ Failed to complete split:", plan.SplitID, err)
			return err
		}

		log.Printf("✅ Split completed: %s (%d continuation record(s))", plan.SplitID, len(ids))
		return nil
	}
}

func NewServeMux(repo SplitApplier) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCompleteSplit, HandleCompleteSplitTask(repo))
	return mux
}

// Enqueuer ส่วนของ asynq.Client ที่ใช้
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Reconciler ส่ง split ที่เขียนไม่ครบเข้าคิว
type Reconciler struct {
	client Enqueuer
}

func NewReconciler(client Enqueuer) *Reconciler {
	return &Reconciler{client: client}
}

func (r *Reconciler) EnqueueSplit(ctx context.Context, plan models.SplitPlan) error {
	task, err := NewCompleteSplitTask(plan)
	if err != nil {
		return err
	}

	taskID := CompleteSplitTaskID(plan.SplitID)
	_, err = r.client.EnqueueContext(ctx, task, asynq.TaskID(taskID), asynq.MaxRetry(completeSplitMaxRetry))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		log.Println("⚠️ Split task already queued:", taskID)
		return nil
	}
	if err != nil {
		log.Printf("❌ Failed to enqueue task %s: %v", taskID, err)
		return err
	}
	log.Println("✅ Task enqueued:", taskID)
	return nil
}
