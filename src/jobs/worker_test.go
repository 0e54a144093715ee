package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"staffclock/src/models"
	"staffclock/src/repository"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

func ptr(t time.Time) *time.Time { return &t }

func seedSplit(t *testing.T, repo *repository.MemoryAttendanceRepository) models.SplitPlan {
	t.Helper()
	in := time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC)
	id, err := repo.Create(context.Background(), &models.AttendanceRecord{UserID: "u", Date: "2024-03-04", TimeIn: ptr(in)})
	require.NoError(t, err)
	return models.SplitPlan{
		SplitID: "split-9",
		CloseID: id,
		Close:   models.RecordUpdate{TimeOut: ptr(time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC))},
		Continuations: []models.AttendanceRecord{{
			UserID:  "u",
			Date:    "2024-03-05",
			TimeIn:  ptr(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
			TimeOut: ptr(time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)),
		}},
	}
}

func TestCompleteSplitTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAttendanceRepository()
	plan := seedSplit(t, repo)

	task, err := NewCompleteSplitTask(plan)
	require.NoError(t, err)
	assert.Equal(t, TypeCompleteSplit, task.Type())

	handler := HandleCompleteSplitTask(repo)
	require.NoError(t, handler(ctx, task))
	// งานซ้ำต้องไม่สร้าง record เพิ่ม
	require.NoError(t, handler(ctx, task))

	all, err := repo.FindByUser(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, r := range all {
		assert.Equal(t, "split-9", r.SplitID)
		assert.False(t, r.IsOpen())
	}
}

func TestCompleteSplitTaskBadPayload(t *testing.T) {
	handler := HandleCompleteSplitTask(repository.NewMemoryAttendanceRepository())
	err := handler(context.Background(), asynq.NewTask(TypeCompleteSplit, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCompleteSplitTaskMissingRecord(t *testing.T) {
	payload, err := json.Marshal(CompleteSplitPayload{Plan: models.SplitPlan{SplitID: "s", CloseID: "gone"}})
	require.NoError(t, err)

	handler := HandleCompleteSplitTask(repository.NewMemoryAttendanceRepository())
	assert.NoError(t, handler(context.Background(), asynq.NewTask(TypeCompleteSplit, payload)))
}

func TestReconcilerEnqueue(t *testing.T) {
	ctx := context.Background()
	plan := models.SplitPlan{SplitID: "abc", CloseID: "1"}

	t.Run("enqueues with task id", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", ctx, mock.MatchedBy(func(task *asynq.Task) bool {
			return task.Type() == TypeCompleteSplit
		}), mock.MatchedBy(func(opts []asynq.Option) bool {
			var id string
			var retry int
			for _, o := range opts {
				switch o.Type() {
				case asynq.TaskIDOpt:
					id = o.Value().(string)
				case asynq.MaxRetryOpt:
					retry = o.Value().(int)
				}
			}
			return id == "complete-split-abc" && retry == 10
		})).Return(&asynq.TaskInfo{ID: "complete-split-abc"}, nil)

		require.NoError(t, NewReconciler(client).EnqueueSplit(ctx, plan))
		client.AssertExpectations(t)
	})

	t.Run("duplicate task id is not an error", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", ctx, mock.Anything, mock.Anything).Return(nil, asynq.ErrTaskIDConflict)
		assert.NoError(t, NewReconciler(client).EnqueueSplit(ctx, plan))
	})

	t.Run("redis failure", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))
		assert.Error(t, NewReconciler(client).EnqueueSplit(ctx, plan))
	})
}
