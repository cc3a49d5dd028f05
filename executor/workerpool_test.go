package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPreservesOrder(t *testing.T) {
	pool := NewWorkerPool(2)
	inputs := []int{1, 2, 3, 4, 5}

	results, err := Run(context.Background(), pool, inputs, func(_ context.Context, n int) (int, error) {
		return n * n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16, 25}, results)
}

func TestRunPropagatesFirstError(t *testing.T) {
	pool := NewWorkerPool(2)
	boom := errors.New("boom")

	_, err := Run(context.Background(), pool, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunEmptyInput(t *testing.T) {
	pool := NewWorkerPool(0)
	results, err := Run(context.Background(), pool, []int{}, func(_ context.Context, n int) (int, error) {
		t.Fatal("op should never be called")
		return n, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRunBatchedFlattensInOrder(t *testing.T) {
	pool := NewWorkerPool(4)
	inputs := []int{1, 2, 3, 4, 5}

	results, err := RunBatched(context.Background(), pool, inputs, 2, func(_ context.Context, batch []int) ([]int, error) {
		out := make([]int, len(batch))
		for i, n := range batch {
			out[i] = n * 10
		}
		return out, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, results)
}

func TestRunBatchedDefaultsBatchSizeToAllInputs(t *testing.T) {
	pool := NewWorkerPool(1)
	var batchesSeen int

	_, err := RunBatched(context.Background(), pool, []int{1, 2, 3}, 0, func(_ context.Context, batch []int) ([]int, error) {
		batchesSeen++
		return batch, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, batchesSeen)
}

func TestNewWorkerPoolDefaultsToNumCPU(t *testing.T) {
	pool := NewWorkerPool(0)
	assert.Greater(t, pool.workerCount, 0)
}

func TestNewWorkerPoolCapsAtMaxThreads(t *testing.T) {
	pool := NewWorkerPool(10000)
	assert.Equal(t, maxWorkerPoolThreads, pool.workerCount)
}

func TestNewWorkerPoolBelowCapIsUnchanged(t *testing.T) {
	pool := NewWorkerPool(4)
	assert.Equal(t, 4, pool.workerCount)
}

func TestChunkSizeUsesMaxOfCeilDivAndFloor(t *testing.T) {
	assert.Equal(t, 100, chunkSize(500, 32))  // ceil(500/32)=16, floor 100 wins
	assert.Equal(t, 157, chunkSize(5000, 32)) // ceil(5000/32)=157 wins
	assert.Equal(t, 100, chunkSize(100, 1))
}

func TestChunkSizeTreatsNonPositiveThreadsAsOne(t *testing.T) {
	assert.Equal(t, 1000, chunkSize(1000, 0))
}
