package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	n := 1000
	seen := make([]int32, n)
	For(n, cfg, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})

	for i, c := range seen {
		assert.Equal(t, int32(1), c, "index %d", i)
	}
}

func TestRange_Chunks(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 2}

	var mu sync.Mutex
	var total int
	var chunks int
	Range(10, cfg, func(lo, hi int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Less(t, lo, hi)
		total += hi - lo
		chunks++
	})

	assert.Equal(t, 10, total)
	assert.Equal(t, 3, chunks) // ceil(10/3) = 4 per chunk
}

func TestRange_Sequential(t *testing.T) {
	for name, cfg := range map[string]Config{
		"disabled":    {Enabled: false, NumWorkers: 8},
		"one worker":  {Enabled: true, NumWorkers: 1},
		"small input": {Enabled: true, NumWorkers: 8, MinChunkSize: 100},
	} {
		t.Run(name, func(t *testing.T) {
			var calls [][2]int
			Range(50, cfg, func(lo, hi int) {
				calls = append(calls, [2]int{lo, hi})
			})
			assert.Equal(t, [][2]int{{0, 50}}, calls)
		})
	}
}

func TestRange_Empty(t *testing.T) {
	called := false
	Range(0, DefaultConfig(), func(_, _ int) { called = true })
	assert.False(t, called)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, cfg, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			})
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, cfgSeq, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			})
		}
	})
}
