package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGate_OneWayLatch(t *testing.T) {
	g := NewGate("startup")
	ctx := context.Background()

	out := g.Check(ctx)
	if out.Status != StatusUnhealthy || out.Description != "not ready" {
		t.Fatalf("before completion: %+v", out)
	}

	g.Complete()
	g.Complete()
	for range 3 {
		if out := g.Check(ctx); out.Status != StatusHealthy {
			t.Fatalf("gate reverted: %+v", out)
		}
	}
}

func TestGate_DefaultTag(t *testing.T) {
	if !NewGate("startup").Tags().Has(TagReady) {
		t.Error("gate should default to the ready tag")
	}
	g := NewGate("startup", "warmup")
	if g.Tags().Has(TagReady) || !g.Tags().Has("warmup") {
		t.Errorf("explicit tags not honored: %v", g.Tags())
	}
}

func TestGate_CompleteAfter(t *testing.T) {
	g := NewGate("startup")
	done := g.CompleteAfter(context.Background(), 20*time.Millisecond)

	if g.Completed() {
		t.Fatal("gate completed before warm-up elapsed")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("warm-up task did not finish")
	}
	if !g.Completed() {
		t.Error("gate not completed after warm-up")
	}
}

func TestGate_CompleteAfterCanceled(t *testing.T) {
	g := NewGate("startup")
	ctx, cancel := context.WithCancel(context.Background())
	done := g.CompleteAfter(ctx, time.Hour)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("warm-up task ignored cancellation")
	}
	if g.Completed() {
		t.Error("canceled warm-up must not complete the gate")
	}
}

func TestGate_CompleteWhen(t *testing.T) {
	ok := NewGate("ok")
	<-ok.CompleteWhen(context.Background(), func(context.Context) error { return nil })
	if !ok.Completed() {
		t.Error("successful task should complete the gate")
	}

	failed := NewGate("failed")
	<-failed.CompleteWhen(context.Background(), func(context.Context) error { return errors.New("migrations failed") })
	if failed.Completed() {
		t.Error("failed task must not complete the gate")
	}
}

func TestGate_ConcurrentReaders(t *testing.T) {
	g := NewGate("startup")
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seenHealthy := false
			for range 200 {
				healthy := g.Check(ctx).Status == StatusHealthy
				if seenHealthy && !healthy {
					t.Error("gate reverted to Unhealthy")
					return
				}
				seenHealthy = seenHealthy || healthy
			}
		}()
	}
	g.Complete()
	wg.Wait()
}
