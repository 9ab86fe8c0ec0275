// Package retention 周期性统计保留期已过的归档条目。条目从不删除，只能经 restore 恢复。
package retention

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName          = "lingo-services-greeter/retention"
	metricNameArchived = "greeter.retention.archived_entries"
	defaultInterval    = time.Minute
	defaultRunTimeout  = 30 * time.Second
)

// ArchiveCounter 返回 expires_at 已过、等待恢复的条目数量。
type ArchiveCounter interface {
	CountArchived(ctx context.Context) (int64, error)
}

// Config 控制巡检任务。
type Config struct {
	Enabled  bool
	Interval time.Duration
}

// Task 以固定间隔调用 ArchiveCounter，实现 kratos transport.Server 以便随 App 启停。
type Task struct {
	counter  ArchiveCounter
	cfg      Config
	log      *log.Helper
	archived metric.Int64Gauge
	stopCh   chan struct{}
	stopOnce sync.Once
}

var _ transport.Server = (*Task)(nil)

// NewTask 构造巡检任务；Interval 非正时回退为一分钟。
func NewTask(counter ArchiveCounter, cfg Config, logger log.Logger) *Task {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	gauge, err := otel.Meter(meterName).Int64Gauge(
		metricNameArchived,
		metric.WithDescription("Contract entries whose retention lapsed and that wait for restore"),
	)
	if err != nil {
		otel.Handle(err)
	}
	return &Task{
		counter:  counter,
		cfg:      cfg,
		log:      log.NewHelper(log.With(logger, "module", "task.retention")),
		archived: gauge,
		stopCh:   make(chan struct{}),
	}
}

// Start 阻塞执行巡检循环，直到 ctx 结束或 Stop 被调用。
func (t *Task) Start(ctx context.Context) error {
	if !t.cfg.Enabled || t.counter == nil {
		t.log.WithContext(ctx).Info("retention task disabled")
		return nil
	}
	t.log.WithContext(ctx).Infof("retention task started: interval=%s", t.cfg.Interval)

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.stopCh:
			return nil
		case <-ticker.C:
			if _, err := t.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				t.log.WithContext(ctx).Warnf("retention scan failed: %v", err)
			}
		}
	}
}

// Stop 结束巡检循环，可重复调用。
func (t *Task) Stop(context.Context) error {
	t.stopOnce.Do(func() { close(t.stopCh) })
	return nil
}

// RunOnce 执行一次巡检并返回归档条目数量。
func (t *Task) RunOnce(ctx context.Context) (int64, error) {
	if t.counter == nil {
		return 0, nil
	}
	runCtx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	n, err := t.counter.CountArchived(runCtx)
	if err != nil {
		return 0, err
	}
	if t.archived != nil {
		t.archived.Record(ctx, n)
	}
	if n > 0 {
		t.log.WithContext(ctx).Warnf("retention scan found %d archived entries awaiting restore", n)
	}
	return n, nil
}
