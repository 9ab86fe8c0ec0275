package retention

import (
	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-greeter/internal/repositories"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet exposes the retention task for Wire.
var ProviderSet = wire.NewSet(ProvideTask)

// ProvideTask 将共享的 ArchiveCounter 与 tasks.retention 配置包装为巡检任务。
func ProvideTask(counter repositories.ArchiveCounter, cfg *configloader.Tasks, logger log.Logger) *Task {
	taskCfg := Config{}
	if cfg != nil {
		taskCfg.Enabled = cfg.Retention.Enabled
		taskCfg.Interval = cfg.Retention.Interval.Std()
	}
	return NewTask(counter, taskCfg, logger)
}
