package configloader

import (
	"github.com/bionicotaku/lingo-services-greeter/internal/contract"

	obswire "github.com/bionicotaku/lingo-utils/observability"
	"github.com/bionicotaku/lingo-utils/txmanager"
)

// Bundle 聚合强类型的配置片段，供下游 Wire 注入使用。
type Bundle struct {
	Bootstrap *Bootstrap
	ObsConfig obswire.ObservabilityConfig
	Service   ServiceMetadata
	TxConfig  txmanager.Config
	Retention contract.Retention
}

func newBundle(bc *Bootstrap, meta ServiceMetadata) *Bundle {
	return &Bundle{
		Bootstrap: bc,
		ObsConfig: toObservabilityConfig(bc.Observability),
		Service:   meta,
		TxConfig:  toTxManagerConfig(bc.Data.Postgres.Transaction),
		Retention: toRetention(bc.Contract),
	}
}

// toObservabilityConfig 将配置文件中的 observability 段转换为 observability 包的规范化结构。
func toObservabilityConfig(src Observability) obswire.ObservabilityConfig {
	cfg := obswire.ObservabilityConfig{
		GlobalAttributes: cloneStringMap(src.GlobalAttributes),
	}
	if tr := src.Tracing; tr != nil {
		cfg.Tracing = &obswire.TracingConfig{
			Enabled:            tr.Enabled,
			Exporter:           tr.Exporter,
			Endpoint:           tr.Endpoint,
			Headers:            cloneStringMap(tr.Headers),
			Insecure:           tr.Insecure,
			SamplingRatio:      tr.SamplingRatio,
			BatchTimeout:       tr.BatchTimeout.Std(),
			ExportTimeout:      tr.ExportTimeout.Std(),
			MaxQueueSize:       tr.MaxQueueSize,
			MaxExportBatchSize: tr.MaxExportBatchSize,
			Required:           tr.Required,
			Attributes:         cloneStringMap(tr.Attributes),
		}
	}
	if mt := src.Metrics; mt != nil {
		cfg.Metrics = &obswire.MetricsConfig{
			Enabled:             mt.Enabled,
			Exporter:            mt.Exporter,
			Endpoint:            mt.Endpoint,
			Headers:             cloneStringMap(mt.Headers),
			Insecure:            mt.Insecure,
			Interval:            mt.Interval.Std(),
			DisableRuntimeStats: mt.DisableRuntimeStats,
			Required:            mt.Required,
			ResourceAttributes:  cloneStringMap(mt.ResourceAttributes),
		}
	}
	return cfg
}

func toTxManagerConfig(tx Transaction) txmanager.Config {
	cfg := txmanager.Config{
		DefaultIsolation: tx.DefaultIsolation,
		DefaultTimeout:   tx.DefaultTimeout.Std(),
		LockTimeout:      tx.LockTimeout.Std(),
		MaxRetries:       tx.MaxRetries,
	}
	if tx.MetricsEnabled != nil {
		v := *tx.MetricsEnabled
		cfg.MetricsEnabled = &v
	}
	return cfg
}

// toRetention 未配置的字段回退到 contract.DefaultRetention。
func toRetention(c Contract) contract.Retention {
	r := contract.DefaultRetention
	if c.RetentionThreshold > 0 {
		r.Threshold = c.RetentionThreshold.Std()
	}
	if c.RetentionExtendTo > 0 {
		r.ExtendTo = c.RetentionExtendTo.Std()
	}
	return r
}

// cloneStringMap 创建字符串映射的拷贝，源为空时返回 nil。
func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
