// Package configloader 负责加载 bootstrap 配置、应用环境变量覆盖并派生各组件所需的强类型配置。
package configloader

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 支持 "1s"、"500ms" 形式的字符串与纳秒整数两种写法。
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler。
func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*d = 0
	case float64:
		*d = Duration(time.Duration(v))
	case string:
		if v == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// MarshalJSON 实现 json.Marshaler。
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std 返回 time.Duration。
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Bootstrap 对应 configs/config.yaml 的顶层结构。
type Bootstrap struct {
	Server        Server        `json:"server"`
	Data          Data          `json:"data"`
	Contract      Contract      `json:"contract"`
	Tasks         Tasks         `json:"tasks"`
	Observability Observability `json:"observability"`
}

// Server 描述对外监听的传输层。
type Server struct {
	HTTP             HTTPServer `json:"http"`
	Handlers         Handlers   `json:"handlers"`
	MetadataPrefixes []string   `json:"metadata_prefixes"`
}

// Handlers 按命令/查询区分 Handler 超时。
type Handlers struct {
	DefaultTimeout Duration `json:"default_timeout"`
	CommandTimeout Duration `json:"command_timeout"`
	QueryTimeout   Duration `json:"query_timeout"`
}

// HTTPServer 描述 kratos HTTP 服务器。
type HTTPServer struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

// Data 描述存储后端。Driver 取值 postgres 或 memory。
type Data struct {
	Driver   string   `json:"driver"`
	Postgres Postgres `json:"postgres"`
}

// Postgres 描述 pgxpool 连接池参数。
type Postgres struct {
	DSN                      string      `json:"dsn"`
	MaxOpenConns             int32       `json:"max_open_conns"`
	MinOpenConns             int32       `json:"min_open_conns"`
	MaxConnLifetime          Duration    `json:"max_conn_lifetime"`
	MaxConnIdleTime          Duration    `json:"max_conn_idle_time"`
	HealthCheckPeriod        Duration    `json:"health_check_period"`
	Schema                   string      `json:"schema"`
	EnablePreparedStatements bool        `json:"enable_prepared_statements"`
	Transaction              Transaction `json:"transaction"`
}

// Transaction 对应 txmanager.Config。
type Transaction struct {
	DefaultIsolation string   `json:"default_isolation"`
	DefaultTimeout   Duration `json:"default_timeout"`
	LockTimeout      Duration `json:"lock_timeout"`
	MaxRetries       int      `json:"max_retries"`
	MetricsEnabled   *bool    `json:"metrics_enabled"`
}

// Contract 描述合约条目的保留策略。
type Contract struct {
	RetentionThreshold Duration `json:"retention_threshold"`
	RetentionExtendTo  Duration `json:"retention_extend_to"`
}

// Tasks 描述后台任务。
type Tasks struct {
	Retention RetentionTask `json:"retention"`
}

// RetentionTask 控制过期条目清理任务。
type RetentionTask struct {
	Enabled  bool     `json:"enabled"`
	Interval Duration `json:"interval"`
}

// Observability 描述追踪与指标导出。
type Observability struct {
	GlobalAttributes map[string]string `json:"global_attributes"`
	Tracing          *Tracing          `json:"tracing"`
	Metrics          *Metrics          `json:"metrics"`
}

// Tracing 对应 observability.TracingConfig。
type Tracing struct {
	Enabled            bool              `json:"enabled"`
	Exporter           string            `json:"exporter"`
	Endpoint           string            `json:"endpoint"`
	Headers            map[string]string `json:"headers"`
	Insecure           bool              `json:"insecure"`
	SamplingRatio      float64           `json:"sampling_ratio"`
	BatchTimeout       Duration          `json:"batch_timeout"`
	ExportTimeout      Duration          `json:"export_timeout"`
	MaxQueueSize       int               `json:"max_queue_size"`
	MaxExportBatchSize int               `json:"max_export_batch_size"`
	Required           bool              `json:"required"`
	Attributes         map[string]string `json:"attributes"`
}

// Metrics 对应 observability.MetricsConfig。
type Metrics struct {
	Enabled             bool              `json:"enabled"`
	Exporter            string            `json:"exporter"`
	Endpoint            string            `json:"endpoint"`
	Headers             map[string]string `json:"headers"`
	Insecure            bool              `json:"insecure"`
	Interval            Duration          `json:"interval"`
	DisableRuntimeStats bool              `json:"disable_runtime_stats"`
	Required            bool              `json:"required"`
	ResourceAttributes  map[string]string `json:"resource_attributes"`
}
