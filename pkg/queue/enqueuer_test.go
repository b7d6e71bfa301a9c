package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/intentionalhq/notifier/pkg/queue"
)

// MockEnqueuerRepository is a mock implementation of EnqueuerRepository
type MockEnqueuerRepository struct {
	mock.Mock
}

func (m *MockEnqueuerRepository) CreateItem(ctx context.Context, item *queue.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockEnqueuerRepository) CreateItems(ctx context.Context, items []*queue.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func TestNewEnqueuer(t *testing.T) {
	t.Parallel()

	t.Run("nil repository error", func(t *testing.T) {
		t.Parallel()

		_, err := queue.NewEnqueuer(nil)
		assert.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		enq, err := queue.NewEnqueuer(new(MockEnqueuerRepository))
		require.NoError(t, err)
		assert.NotNil(t, enq)
	})
}

func TestEnqueuer_Enqueue(t *testing.T) {
	t.Parallel()

	t.Run("persists pending item with defaults", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockEnqueuerRepository)
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("CreateItem", mock.Anything, mock.MatchedBy(func(item *queue.Item) bool {
			return item.Status == queue.StatusPending &&
				item.Priority == queue.PriorityDefault &&
				item.RetryCount == 0 &&
				!item.ScheduledFor.IsZero()
		})).Return(nil).Once()

		enq, err := queue.NewEnqueuer(mockRepo)
		require.NoError(t, err)

		item, err := enq.Enqueue(context.Background(), queue.Input{
			Recipient: "user@example.com",
			Subject:   "Welcome to Your New Challenge!",
			Kind:      "challenge_new",
			Payload:   map[string]any{"name": "Alex", "challengeName": "Hydration"},
		})
		require.NoError(t, err)
		assert.NotEqual(t, "", item.ID.String())
		assert.Equal(t, queue.StatusPending, item.Status)
		assert.WithinDuration(t, time.Now(), item.ScheduledFor, time.Second)
	})

	t.Run("explicit priority and schedule preserved", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockEnqueuerRepository)
		defer mockRepo.AssertExpectations(t)

		future := time.Now().Add(2 * time.Hour).Truncate(time.Second)
		mockRepo.On("CreateItem", mock.Anything, mock.MatchedBy(func(item *queue.Item) bool {
			return item.Priority == queue.PriorityUrgent && item.ScheduledFor.Equal(future)
		})).Return(nil).Once()

		enq, err := queue.NewEnqueuer(mockRepo)
		require.NoError(t, err)

		_, err = enq.Enqueue(context.Background(), queue.Input{
			Recipient:    "user@example.com",
			Subject:      "Your Challenge Starts Soon!",
			Kind:         "challenge_starting_soon",
			Priority:     queue.PriorityUrgent,
			ScheduledFor: &future,
		})
		require.NoError(t, err)
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockEnqueuerRepository)
		enq, err := queue.NewEnqueuer(mockRepo)
		require.NoError(t, err)

		cases := []struct {
			name  string
			input queue.Input
			want  error
		}{
			{
				name:  "missing recipient",
				input: queue.Input{Subject: "s", Kind: "daily_checkin"},
				want:  queue.ErrRecipientRequired,
			},
			{
				name:  "missing subject",
				input: queue.Input{Recipient: "a@b.c", Kind: "daily_checkin"},
				want:  queue.ErrSubjectRequired,
			},
			{
				name:  "missing kind",
				input: queue.Input{Recipient: "a@b.c", Subject: "s"},
				want:  queue.ErrKindRequired,
			},
			{
				name:  "priority out of range",
				input: queue.Input{Recipient: "a@b.c", Subject: "s", Kind: "daily_checkin", Priority: 11},
				want:  queue.ErrInvalidPriority,
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := enq.Enqueue(context.Background(), tc.input)
				assert.ErrorIs(t, err, tc.want)
			})
		}

		// Nothing may reach storage on validation failure
		mockRepo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
	})

	t.Run("storage error wrapped", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockEnqueuerRepository)
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("CreateItem", mock.Anything, mock.Anything).
			Return(errors.New("connection refused")).Once()

		enq, err := queue.NewEnqueuer(mockRepo)
		require.NoError(t, err)

		_, err = enq.Enqueue(context.Background(), queue.Input{
			Recipient: "user@example.com",
			Subject:   "s",
			Kind:      "daily_checkin",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to enqueue")
	})
}

func TestEnqueuer_EnqueueBatch(t *testing.T) {
	t.Parallel()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockEnqueuerRepository)
		enq, err := queue.NewEnqueuer(mockRepo)
		require.NoError(t, err)

		items, err := enq.EnqueueBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, items)

		mockRepo.AssertNotCalled(t, "CreateItems", mock.Anything, mock.Anything)
	})

	t.Run("all validated before any write", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockEnqueuerRepository)
		enq, err := queue.NewEnqueuer(mockRepo)
		require.NoError(t, err)

		inputs := []queue.Input{
			{Recipient: "a@example.com", Subject: "s", Kind: "daily_checkin"},
			{Recipient: "", Subject: "s", Kind: "daily_checkin"},
		}

		_, err = enq.EnqueueBatch(context.Background(), inputs)
		require.ErrorIs(t, err, queue.ErrRecipientRequired)
		assert.Contains(t, err.Error(), "input 1")

		mockRepo.AssertNotCalled(t, "CreateItems", mock.Anything, mock.Anything)
	})

	t.Run("single storage call for the whole batch", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockEnqueuerRepository)
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("CreateItems", mock.Anything, mock.MatchedBy(func(items []*queue.Item) bool {
			return len(items) == 3
		})).Return(nil).Once()

		enq, err := queue.NewEnqueuer(mockRepo, queue.WithDefaultPriority(queue.PriorityLow))
		require.NoError(t, err)

		inputs := make([]queue.Input, 3)
		for i := range inputs {
			inputs[i] = queue.Input{
				Recipient: "user@example.com",
				Subject:   "Weekly Progress Review",
				Kind:      "weekly_checkin",
			}
		}

		items, err := enq.EnqueueBatch(context.Background(), inputs)
		require.NoError(t, err)
		require.Len(t, items, 3)
		for _, item := range items {
			assert.Equal(t, queue.PriorityLow, item.Priority)
		}
	})
}
