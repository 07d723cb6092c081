package probes

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthops/health"
)

func TestRedis_Check(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	p := NewRedis("redis", client, Options{Tags: []string{"ready"}})
	if p.Name() != "redis" || !p.Tags().Has("ready") {
		t.Errorf("identity = %q %v", p.Name(), p.Tags())
	}

	if out := p.Check(context.Background()); out.Status != health.StatusHealthy {
		t.Fatalf("status = %v (%v)", out.Status, out.Err)
	}

	mr.SetError("LOADING Redis is loading the dataset in memory")
	out := p.Check(context.Background())
	if out.Status != health.StatusUnhealthy || out.Err == nil {
		t.Errorf("expected Unhealthy with cause, got %+v", out)
	}
}

func TestRedis_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	if out := NewRedis("redis", client, Options{}).Check(context.Background()); out.Status != health.StatusUnhealthy {
		t.Errorf("status = %v, want Unhealthy", out.Status)
	}
}
