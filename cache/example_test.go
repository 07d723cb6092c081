package cache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/healthops/cache"
)

func ExampleNewMemoryCache() {
	c := cache.NewMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, "status", []byte("Healthy"), 5*time.Second)

	if value, ok := c.Get(ctx, "status"); ok {
		fmt.Println("Value:", string(value))
	}
	// Output:
	// Value: Healthy
}

func ExampleStatusKey() {
	a := cache.StatusKey("status", []string{"db", "cache"})
	b := cache.StatusKey("status", []string{"db", "cache"})
	fmt.Println(a == b)
	// Output: true
}
