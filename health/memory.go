package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryProbeConfig configures the memory probe.
type MemoryProbeConfig struct {
	// Name of the probe. Default: "memory"
	Name string

	// Tags of the probe.
	Tags []string

	// WarningThreshold is the heap usage ratio that yields Degraded.
	// Value should be between 0 and 1. Default: 0.8 (80%)
	WarningThreshold float64

	// CriticalThreshold is the heap usage ratio that yields Unhealthy.
	// Value should be between 0 and 1. Default: 0.95 (95%)
	CriticalThreshold float64

	// MaxAlloc is the heap budget in bytes.
	// If zero, memory obtained from the OS is used.
	MaxAlloc uint64
}

// MemoryProbe reports heap usage against a budget.
type MemoryProbe struct {
	config MemoryProbeConfig
	tags   Tags
}

// NewMemoryProbe creates a new memory probe.
func NewMemoryProbe(config MemoryProbeConfig) *MemoryProbe {
	if config.Name == "" {
		config.Name = "memory"
	}
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = min(config.WarningThreshold+0.1, 0.99)
	}

	return &MemoryProbe{config: config, tags: NewTags(config.Tags...)}
}

// Name returns the name of this probe.
func (m *MemoryProbe) Name() string {
	return m.config.Name
}

// Tags returns the tags of this probe.
func (m *MemoryProbe) Tags() Tags {
	return m.tags
}

// Check compares the current heap allocation with the budget.
func (m *MemoryProbe) Check(ctx context.Context) Outcome {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context canceled", err)
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	budget := m.config.MaxAlloc
	if budget == 0 {
		budget = stats.Sys
	}
	if budget == 0 {
		return Healthy("memory stats unavailable")
	}

	ratio := float64(stats.Alloc) / float64(budget)
	data := map[string]any{
		"alloc_bytes":   stats.Alloc,
		"budget_bytes":  budget,
		"usage_percent": ratio * 100,
		"heap_objects":  stats.HeapObjects,
		"num_gc":        stats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	switch {
	case ratio >= m.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("memory usage critical: %.1f%%", ratio*100), nil).WithData(data)
	case ratio >= m.config.WarningThreshold:
		return Degraded(fmt.Sprintf("memory usage high: %.1f%%", ratio*100), nil).WithData(data)
	default:
		return Healthy(fmt.Sprintf("memory usage normal: %.1f%%", ratio*100)).WithData(data)
	}
}

var _ Probe = (*MemoryProbe)(nil)
