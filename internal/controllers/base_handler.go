package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-greeter/internal/metadata"

	kmetadata "github.com/go-kratos/kratos/v2/metadata"
	"github.com/go-kratos/kratos/v2/transport"
)

// HandlerType 表示 Handler 的语义类别，用于选择超时策略。
type HandlerType int

const (
	// HandlerTypeDefault 表示未显式区分的 Handler。
	HandlerTypeDefault HandlerType = iota
	// HandlerTypeCommand 表示写操作 Handler。
	HandlerTypeCommand
	// HandlerTypeQuery 表示只读查询 Handler。
	HandlerTypeQuery
)

// HandlerTimeouts 聚合不同类型 Handler 的超时策略。
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
}

const (
	fallbackDefaultTimeout = 5 * time.Second
	fallbackQueryTimeout   = 3 * time.Second
)

// BaseHandler 提供公共的超时、Metadata 解析能力，供具体 Handler 内嵌复用。
type BaseHandler struct {
	timeouts HandlerTimeouts
}

// ProvideHandlerTimeouts 从 server.handlers 配置派生超时策略。
func ProvideHandlerTimeouts(c *configloader.Server) HandlerTimeouts {
	if c == nil {
		return HandlerTimeouts{}
	}
	return HandlerTimeouts{
		Default: c.Handlers.DefaultTimeout.Std(),
		Command: c.Handlers.CommandTimeout.Std(),
		Query:   c.Handlers.QueryTimeout.Std(),
	}
}

// NewBaseHandler 构造基础 Handler，并为缺省值填充合理的回退策略。
func NewBaseHandler(timeouts HandlerTimeouts) *BaseHandler {
	if timeouts.Default <= 0 {
		switch {
		case timeouts.Command > 0:
			timeouts.Default = timeouts.Command
		case timeouts.Query > 0:
			timeouts.Default = timeouts.Query
		default:
			timeouts.Default = fallbackDefaultTimeout
		}
	}
	if timeouts.Command <= 0 {
		timeouts.Command = timeouts.Default
	}
	if timeouts.Query <= 0 {
		timeouts.Query = min(timeouts.Default, fallbackQueryTimeout)
	}
	return &BaseHandler{timeouts: timeouts}
}

// WithTimeout 根据 Handler 类型包装上下文，返回绑定超时的新 Context 与取消函数。
func (h *BaseHandler) WithTimeout(ctx context.Context, kind HandlerType) (context.Context, context.CancelFunc) {
	if h == nil {
		return context.WithTimeout(ctx, fallbackDefaultTimeout)
	}
	var timeout time.Duration
	switch kind {
	case HandlerTypeCommand:
		timeout = h.timeouts.Command
	case HandlerTypeQuery:
		timeout = h.timeouts.Query
	default:
		timeout = h.timeouts.Default
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// ExtractMetadata 优先读取 kratos metadata 中间件传播的值，缺失时回退到原始请求头。
func (h *BaseHandler) ExtractMetadata(ctx context.Context) metadata.HandlerMetadata {
	return metadata.HandlerMetadata{
		UserID:    lookup(ctx, metadata.HeaderUserID),
		RequestID: lookup(ctx, metadata.HeaderRequestID),
	}
}

func lookup(ctx context.Context, key string) string {
	if md, ok := kmetadata.FromServerContext(ctx); ok {
		if v := strings.TrimSpace(md.Get(key)); v != "" {
			return v
		}
	}
	if tr, ok := transport.FromServerContext(ctx); ok {
		return strings.TrimSpace(tr.RequestHeader().Get(key))
	}
	return ""
}
