package testutil

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockSequence(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Zero(t, clock.Current())

	var got []int64
	for range 5 {
		got = append(got, clock.Next())
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, got)
	assert.Equal(t, int64(5), clock.Current())
}

func TestClockResetRestartsSequence(t *testing.T) {
	clock := NewDeterministicClock()
	first := []int64{clock.Next(), clock.Next()}

	clock.Reset()
	assert.Zero(t, clock.Current())
	assert.Equal(t, first, []int64{clock.Next(), clock.Next()})
}

func TestClockConcurrentNextIsUnique(t *testing.T) {
	const workers, perWorker = 32, 250
	clock := NewDeterministicClock()

	var (
		mu  sync.Mutex
		all []int64
		wg  sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for range perWorker {
				local = append(local, clock.Next())
			}
			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	slices.Sort(all)
	require.Len(t, all, workers*perWorker)
	for i, v := range all {
		require.Equal(t, int64(i+1), v)
	}
}
