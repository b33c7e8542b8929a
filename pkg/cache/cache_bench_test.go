package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"routeviz/pkg/domain"
)

func BenchmarkMemoryCache_Set(b *testing.B) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	value := make([]byte, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i%10000), value, time.Minute)
	}
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "benchmark-key", []byte("benchmark-value"), time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, "benchmark-key")
	}
}

func BenchmarkMemoryCache_Concurrent(b *testing.B) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	value := []byte("test-value")

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key-%d", i%1000)
			if i%2 == 0 {
				c.Set(ctx, key, value, time.Minute)
			} else {
				c.Get(ctx, key)
			}
			i++
		}
	})
}

func BenchmarkGraphHash(b *testing.B) {
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		g := domain.NewGraph()
		for i := 0; i < size-1; i++ {
			g.AddUndirectedEdge(fmt.Sprintf("city-%d", i), fmt.Sprintf("city-%d", i+1), float64(i%10+1))
		}
		snap := g.Snapshot()

		b.Run(fmt.Sprintf("nodes_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				GraphHash(snap)
			}
		})
	}
}
