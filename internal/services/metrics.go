package services

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName             = "github.com/bionicotaku/lingo-services-greeter/internal/services"
	metricNameContractOps = "greeter.contract.operations"
	resultOK              = "ok"
	opInitialize          = "initialize"
	opGreet               = "greet"
	opGetCounter          = "get_counter"
	opGetLastGreeting     = "get_last_greeting"
	opGetUserCounter      = "get_user_counter"
	opResetCounter        = "reset_counter"
	opTransferAdmin       = "transfer_admin"
	opSetLimit            = "set_limit"
	opGetLimit            = "get_limit"
	opGetAdmin            = "get_admin"
	opSnapshot            = "snapshot"
	opRestore             = "restore"
)

type contractMetrics struct {
	ops metric.Int64Counter
}

func newContractMetrics(helper *log.Helper) *contractMetrics {
	counter, err := otel.Meter(meterName).Int64Counter(metricNameContractOps,
		metric.WithDescription("Contract operations by name and outcome"))
	if err != nil {
		helper.Warnf("contract metrics: register operations counter: %v", err)
		return &contractMetrics{}
	}
	return &contractMetrics{ops: counter}
}

func (m *contractMetrics) record(ctx context.Context, op, result string) {
	if m == nil || m.ops == nil {
		return
	}
	m.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("result", result),
	))
}
