package configloader

import (
	"errors"
	"fmt"
)

// Validate 校验加载后的配置，返回所有违反约束的字段。
func (bc *Bootstrap) Validate() error {
	if bc == nil {
		return errors.New("bootstrap is nil")
	}
	var errs []error
	if bc.Server.HTTP.Addr == "" {
		errs = append(errs, errors.New("server.http.addr is required"))
	}
	if bc.Server.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("server.http.timeout must not be negative"))
	}
	switch bc.Data.Driver {
	case DriverPostgres:
		if bc.Data.Postgres.DSN == "" {
			errs = append(errs, errors.New("data.postgres.dsn is required (set DATABASE_URL)"))
		}
		if bc.Data.Postgres.MinOpenConns < 0 || bc.Data.Postgres.MaxOpenConns < 0 {
			errs = append(errs, errors.New("data.postgres connection limits must not be negative"))
		}
		if max := bc.Data.Postgres.MaxOpenConns; max > 0 && bc.Data.Postgres.MinOpenConns > max {
			errs = append(errs, fmt.Errorf("data.postgres.min_open_conns %d exceeds max_open_conns %d", bc.Data.Postgres.MinOpenConns, max))
		}
		if bc.Data.Postgres.Transaction.MaxRetries < 0 {
			errs = append(errs, errors.New("data.postgres.transaction.max_retries must not be negative"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("data.driver %q is not one of postgres, memory", bc.Data.Driver))
	}
	c := bc.Contract
	if c.RetentionThreshold < 0 || c.RetentionExtendTo < 0 {
		errs = append(errs, errors.New("contract retention durations must not be negative"))
	}
	if c.RetentionThreshold > 0 && c.RetentionExtendTo > 0 && c.RetentionThreshold > c.RetentionExtendTo {
		errs = append(errs, errors.New("contract.retention_threshold must not exceed retention_extend_to"))
	}
	if bc.Tasks.Retention.Interval < 0 {
		errs = append(errs, errors.New("tasks.retention.interval must not be negative"))
	}
	if tr := bc.Observability.Tracing; tr != nil && (tr.SamplingRatio < 0 || tr.SamplingRatio > 1) {
		errs = append(errs, fmt.Errorf("observability.tracing.sampling_ratio %v out of [0,1]", tr.SamplingRatio))
	}
	return errors.Join(errs...)
}
