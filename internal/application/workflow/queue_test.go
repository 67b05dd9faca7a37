package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpkinbots/partbot/internal/application/workflow"
)

func TestQueue_SerializaTareas(t *testing.T) {
	q := workflow.NewQueue(4, zerolog.Nop())
	defer q.Close()

	var (
		running int
		maxSeen int
		mu      sync.Mutex
		order   []int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := q.Do(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				order = append(order, i)
				mu.Unlock()

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Len(t, order, 20)
}

func TestQueue_PropagaErroresYPanics(t *testing.T) {
	q := workflow.NewQueue(1, zerolog.Nop())
	defer q.Close()

	boom := errors.New("boom")
	err := q.Do(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	err = q.Do(context.Background(), func(context.Context) error { panic("kaput") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaput")

	// La cola sigue viva después de un panic.
	assert.NoError(t, q.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestQueue_Cerrada(t *testing.T) {
	q := workflow.NewQueue(1, zerolog.Nop())
	q.Close()
	q.Close()
	err := q.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, workflow.ErrQueueClosed)
}
