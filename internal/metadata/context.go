// Package metadata 提供 HandlerMetadata 在 Context 中的存取工具，供控制器与服务层共享。
package metadata

import (
	"context"
	"strings"
)

const (
	// HeaderUserID carries the claimed caller identity.
	HeaderUserID = "x-md-global-user-id"
	// HeaderRequestID correlates a request across services.
	HeaderRequestID = "x-md-request-id"
)

// HandlerMetadata 描述从请求头或上游链路解析出的上下文信息。
type HandlerMetadata struct {
	UserID    string
	RequestID string
}

// IsZero 判断 Metadata 是否为空。
func (m HandlerMetadata) IsZero() bool {
	return m.UserID == "" && m.RequestID == ""
}

// Caller 返回请求声明的调用者身份；该身份未经验证。
func (m HandlerMetadata) Caller() (string, bool) {
	id := strings.TrimSpace(m.UserID)
	return id, id != ""
}

type ctxKey struct{}

// Inject 将 HandlerMetadata 注入 Context。
func Inject(ctx context.Context, meta HandlerMetadata) context.Context {
	if meta.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, meta)
}

// FromContext 读取上游注入的 HandlerMetadata。
func FromContext(ctx context.Context) (HandlerMetadata, bool) {
	if ctx == nil {
		return HandlerMetadata{}, false
	}
	meta, ok := ctx.Value(ctxKey{}).(HandlerMetadata)
	return meta, ok
}

// CallerOr 返回 explicit；为空时回退到 Context 中声明的调用者。
func CallerOr(ctx context.Context, explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	if meta, ok := FromContext(ctx); ok {
		if caller, ok := meta.Caller(); ok {
			return caller
		}
	}
	return explicit
}
