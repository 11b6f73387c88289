package migration

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentMapFuncWithErrorLimit(t *testing.T) {
	var running, peak atomic.Int32
	inputs := []int{1, 2, 3, 4, 5, 6}

	outputs, err := ConcurrentMapFuncWithError(inputs, 2, func(n int) (int, error) {
		cur := running.Add(1)
		defer running.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return n * n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16, 25, 36}, outputs)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestConcurrentMapFuncWithErrorSequential(t *testing.T) {
	var order []int
	_, err := ConcurrentMapFuncWithError([]int{1, 2, 3}, 0, func(n int) (struct{}, error) {
		order = append(order, n)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestConcurrentMapFuncWithErrorFails(t *testing.T) {
	boom := errors.New("boom")
	outputs, err := ConcurrentMapFuncWithError([]int{1, 2, 3}, -1, func(n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, outputs)
}
