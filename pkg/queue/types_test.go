package queue_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/intentionalhq/notifier/pkg/queue"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, queue.StatusPending.Valid())
	assert.True(t, queue.StatusSent.Valid())
	assert.True(t, queue.StatusFailed.Valid())
	assert.False(t, queue.Status("queued").Valid())
	assert.False(t, queue.Status("").Valid())

	assert.False(t, queue.StatusPending.Terminal())
	assert.True(t, queue.StatusSent.Terminal())
	assert.True(t, queue.StatusFailed.Terminal())
}

func TestPriority(t *testing.T) {
	t.Parallel()

	assert.True(t, queue.PriorityUrgent.Valid())
	assert.True(t, queue.PriorityLowest.Valid())
	assert.Equal(t, queue.PriorityMedium, queue.PriorityDefault)

	assert.False(t, queue.Priority(0).Valid())
	assert.False(t, queue.Priority(11).Valid())
	assert.False(t, queue.Priority(-1).Valid())
}

func TestPermanentError(t *testing.T) {
	t.Parallel()

	base := errors.New("mailbox does not exist")
	perm := queue.Permanent(base)

	assert.True(t, queue.IsPermanent(perm))
	assert.ErrorIs(t, perm, base, "wrapping must preserve the cause")
	assert.Contains(t, perm.Error(), "mailbox does not exist")

	assert.False(t, queue.IsPermanent(base))
	assert.False(t, queue.IsPermanent(nil))
	assert.Nil(t, queue.Permanent(nil))
}
