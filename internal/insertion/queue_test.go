package insertion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simon-lentz/prapti/internal/insertion"
)

func TestQueue_PushPull(t *testing.T) {
	q := insertion.NewQueue(4)
	q.Push(insertion.TextFragment("hello"))
	q.Push(insertion.EndOfStream)

	first := q.Pull()
	assert.Equal(t, insertion.KindText, first.Kind)
	assert.Equal(t, "hello", first.Text)

	second := q.Pull()
	assert.Equal(t, insertion.KindEndOfStream, second.Kind)
}

func TestQueue_TryPullEmpty(t *testing.T) {
	q := insertion.NewQueue(1)
	_, ok := q.TryPull()
	assert.False(t, ok)

	q.Push(insertion.RequestCursorRepair)
	f, ok := q.TryPull()
	assert.True(t, ok)
	assert.Equal(t, insertion.KindRequestCursorRepair, f.Kind)

	_, ok = q.TryPull()
	assert.False(t, ok)
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := insertion.NewQueue(8)
	q.Push(insertion.TextFragment("one"))
	q.Push(insertion.TextFragment("two"))
	q.Push(insertion.TextFragment("three"))

	assert.Equal(t, "one", q.Pull().Text)
	assert.Equal(t, "two", q.Pull().Text)
	assert.Equal(t, "three", q.Pull().Text)
}

func TestQueue_DefaultCapacity(t *testing.T) {
	q := insertion.NewQueue(0)
	q.Push(insertion.TextFragment("x"))
	assert.Equal(t, "x", q.Pull().Text)
}
