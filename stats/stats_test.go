package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndSnapshot(t *testing.T) {
	k := NewKeeper()
	k.Record("GetInstance", 10*time.Millisecond, 2*time.Millisecond, 100, 500, false)
	k.Record("GetInstance", 30*time.Millisecond, 6*time.Millisecond, 110, 700, false)
	k.Record("GetInstance", 20*time.Millisecond, 0, 120, 0, true)
	k.Record("EnumerateInstances", 50*time.Millisecond, 0, 90, 9000, false)

	snap := k.Snapshot()
	require.Len(t, snap, 2)

	s := snap["GetInstance"]
	assert.Equal(t, uint64(3), s.Count)
	assert.Equal(t, uint64(1), s.ErrorCount)
	assert.Equal(t, 10*time.Millisecond, s.TimeMin)
	assert.Equal(t, 30*time.Millisecond, s.TimeMax)
	assert.Equal(t, 60*time.Millisecond, s.TimeTotal)
	assert.Equal(t, 20*time.Millisecond, s.TimeAvg())
	assert.Equal(t, 2*time.Millisecond, s.ServerTimeMin)
	assert.Equal(t, 6*time.Millisecond, s.ServerTimeMax)
	assert.Equal(t, 8*time.Millisecond, s.ServerTimeTotal)
	assert.Equal(t, uint64(330), s.RequestBytes)
	assert.Equal(t, uint64(1200), s.ResponseBytes)

	// snapshot is a copy
	k.Record("GetInstance", time.Millisecond, 0, 1, 1, false)
	assert.Equal(t, uint64(3), snap["GetInstance"].Count)
}

func TestNilKeeper(t *testing.T) {
	var k *Keeper
	k.Record("GetInstance", time.Millisecond, 0, 1, 1, false)
	assert.Nil(t, k.Snapshot())
}

func TestConcurrentRecord(t *testing.T) {
	k := NewKeeper()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k.Record("EnumerateInstances", time.Millisecond, 0, 10, 10, false)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(800), k.Snapshot()["EnumerateInstances"].Count)
}

func TestStringTable(t *testing.T) {
	k := NewKeeper()
	assert.Equal(t, "no statistics recorded", k.String())

	k.Record("GetInstance", 10*time.Millisecond, 0, 100, 500, false)
	out := k.String()
	assert.Contains(t, out, "operation")
	assert.Contains(t, out, "GetInstance")
}
