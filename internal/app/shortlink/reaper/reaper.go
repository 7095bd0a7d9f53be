package reaper

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"clck.local/internal/app/shortlink"
	"clck.local/internal/platform/metrics"
)

// LinkCleaner 是 reaper 对 service 的最小依赖面。
type LinkCleaner interface {
	Cleanup() int
}

// Reaper 周期性地回收已过期/已耗尽的短链。
//
// 行为约定：
// - 首次触发在启动后一个周期，之后按固定频率触发
// - 单次清理中的 panic 被捕获、记日志、计数，绝不杀死调度循环
// - Stop 取消后续触发并在有限时间内等待循环退出；Start/Stop 均幂等
type Reaper struct {
	svc      LinkCleaner
	interval time.Duration

	// errCount 暴露给测试：观察到的清理异常次数
	errCount atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// stopTimeout：Stop 等待循环退出的上限。单次 cleanup 是纯内存操作，
// 正常情况下远小于这个值。
const stopTimeout = 5 * time.Second

func New(svc LinkCleaner, interval time.Duration) (*Reaper, error) {
	if svc == nil || interval <= 0 {
		return nil, shortlink.ErrInvalidConfiguration
	}
	return &Reaper{svc: svc, interval: interval}, nil
}

// Start 启动调度循环。已在运行时再次调用是空操作。
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(runCtx, r.done)
	slog.Info("reaper started", "interval", r.interval)
}

// Stop 取消待触发的清理并等待循环退出（有上限）。可重复调用。
func (r *Reaper) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		slog.Warn("reaper stop timed out")
	}
	slog.Info("reaper stopped")
}

// Errors 返回观察到的清理异常次数。
func (r *Reaper) Errors() int64 {
	return r.errCount.Load()
}

func (r *Reaper) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fire()
		}
	}
}

// fire 执行一轮清理。异常被吞掉并计数，调度继续。
func (r *Reaper) fire() {
	defer func() {
		if rec := recover(); rec != nil {
			r.errCount.Add(1)
			metrics.ReaperErrorsTotal.Inc()
			slog.Error("reaper cleanup panicked", "panic", rec)
		}
	}()

	removed := r.svc.Cleanup()
	if removed > 0 {
		slog.Info("reaper evicted links", "count", removed)
	}
}
