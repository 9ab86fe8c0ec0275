// Package controllers 提供传输层 Handler，负责处理外部请求并调用业务层。
package controllers

import (
	"context"
	"net/http"

	"github.com/bionicotaku/lingo-services-greeter/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-greeter/internal/metadata"
	"github.com/bionicotaku/lingo-services-greeter/internal/services"
	"github.com/bionicotaku/lingo-services-greeter/internal/views"

	"github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// ReasonInvalidLimit rejects a set-limit request without a limit value.
const ReasonInvalidLimit = "INVALID_LIMIT"

// Operation names reported to middleware (logging, metrics).
const (
	OperationInitialize      = "/greeter.contract.v1.Contract/Initialize"
	OperationGreet           = "/greeter.contract.v1.Contract/Greet"
	OperationGetCounter      = "/greeter.contract.v1.Contract/GetCounter"
	OperationGetLastGreeting = "/greeter.contract.v1.Contract/GetLastGreeting"
	OperationGetUserCounter  = "/greeter.contract.v1.Contract/GetUserCounter"
	OperationResetCounter    = "/greeter.contract.v1.Contract/ResetCounter"
	OperationTransferAdmin   = "/greeter.contract.v1.Contract/TransferAdmin"
	OperationSetLimit        = "/greeter.contract.v1.Contract/SetLimit"
	OperationGetLimit        = "/greeter.contract.v1.Contract/GetLimit"
	OperationGetAdmin        = "/greeter.contract.v1.Contract/GetAdmin"
	OperationSnapshot        = "/greeter.contract.v1.Contract/Snapshot"
	OperationRestore         = "/greeter.contract.v1.Contract/Restore"
)

// GreeterHandler 是问候合约的 HTTP 传输层处理器。
// 负责解码请求、解析调用者身份，并将结果通过 views 层渲染为 JSON。
type GreeterHandler struct {
	*BaseHandler

	uc *services.GreeterUsecase
}

// NewGreeterHandler 构造一个由 GreeterUsecase 支撑的 HTTP Handler。
func NewGreeterHandler(uc *services.GreeterUsecase, base *BaseHandler) *GreeterHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &GreeterHandler{BaseHandler: base, uc: uc}
}

// RegisterRoutes 挂载 /v1/contract 下的全部路由。
func (h *GreeterHandler) RegisterRoutes(srv *khttp.Server) {
	r := srv.Route("/v1/contract")

	r.POST("/initialize", route(h, HandlerTypeCommand, OperationInitialize, bindBody[dto.InitializeRequest],
		func(ctx context.Context, in *dto.InitializeRequest) (*views.AckReply, error) {
			return ack(h.uc.Initialize(ctx, in.Admin))
		}))
	r.POST("/greet", route(h, HandlerTypeCommand, OperationGreet, bindBody[dto.GreetRequest],
		func(ctx context.Context, in *dto.GreetRequest) (*views.GreetReply, error) {
			greeting, err := h.uc.Greet(ctx, metadata.CallerOr(ctx, in.Caller), in.Text)
			if err != nil {
				return nil, err
			}
			return views.NewGreetReply(greeting), nil
		}))
	r.POST("/reset-counter", route(h, HandlerTypeCommand, OperationResetCounter, bindBody[dto.CallerRequest],
		func(ctx context.Context, in *dto.CallerRequest) (*views.AckReply, error) {
			return ack(h.uc.ResetCounter(ctx, metadata.CallerOr(ctx, in.Caller)))
		}))
	r.POST("/transfer-admin", route(h, HandlerTypeCommand, OperationTransferAdmin, bindBody[dto.TransferAdminRequest],
		func(ctx context.Context, in *dto.TransferAdminRequest) (*views.AckReply, error) {
			return ack(h.uc.TransferAdmin(ctx, metadata.CallerOr(ctx, in.Caller), in.NewAdmin))
		}))
	r.POST("/limit", route(h, HandlerTypeCommand, OperationSetLimit, bindSetLimit,
		func(ctx context.Context, in *dto.SetLimitRequest) (*views.AckReply, error) {
			return ack(h.uc.SetLimit(ctx, metadata.CallerOr(ctx, in.Caller), *in.Limit))
		}))
	r.POST("/restore", route(h, HandlerTypeCommand, OperationRestore, bindBody[dto.RestoreRequest],
		func(ctx context.Context, in *dto.RestoreRequest) (*views.RestoreReply, error) {
			restored, err := h.uc.Restore(ctx, in.User)
			if err != nil {
				return nil, err
			}
			return views.NewRestoreReply(restored), nil
		}))

	r.GET("/counter", route(h, HandlerTypeQuery, OperationGetCounter, bindNone,
		func(ctx context.Context, _ *struct{}) (*views.CounterReply, error) {
			count, err := h.uc.GetCounter(ctx)
			if err != nil {
				return nil, err
			}
			return &views.CounterReply{Count: count}, nil
		}))
	r.GET("/limit", route(h, HandlerTypeQuery, OperationGetLimit, bindNone,
		func(ctx context.Context, _ *struct{}) (*views.LimitReply, error) {
			limit, err := h.uc.GetLimit(ctx)
			if err != nil {
				return nil, err
			}
			return &views.LimitReply{Limit: limit}, nil
		}))
	r.GET("/admin", route(h, HandlerTypeQuery, OperationGetAdmin, bindNone,
		func(ctx context.Context, _ *struct{}) (*views.AdminReply, error) {
			admin, err := h.uc.GetAdmin(ctx)
			if err != nil {
				return nil, err
			}
			return views.NewAdminReply(admin), nil
		}))
	r.GET("/users/{user}/last-greeting", route(h, HandlerTypeQuery, OperationGetLastGreeting, bindUser,
		func(ctx context.Context, in *userRequest) (*views.LastGreetingReply, error) {
			last, err := h.uc.GetLastGreeting(ctx, in.User)
			if err != nil {
				return nil, err
			}
			return views.NewLastGreetingReply(last), nil
		}))
	r.GET("/users/{user}/counter", route(h, HandlerTypeQuery, OperationGetUserCounter, bindUser,
		func(ctx context.Context, in *userRequest) (*views.UserCounterReply, error) {
			count, err := h.uc.GetUserCounter(ctx, in.User)
			if err != nil {
				return nil, err
			}
			return &views.UserCounterReply{User: in.User, Count: count}, nil
		}))
	r.GET("/snapshot", route(h, HandlerTypeQuery, OperationSnapshot, bindQueryUser,
		func(ctx context.Context, in *userRequest) (any, error) {
			snap, err := h.uc.Snapshot(ctx, in.User)
			if err != nil {
				return nil, err
			}
			return views.NewSnapshotReply(snap), nil
		}))
}

type userRequest struct {
	User string
}

// route 组装与 protoc-gen-go-http 生成代码一致的处理流程：解码、设置 operation、
// 经过 server 中间件链、渲染结果。
func route[Req any, Resp any](
	h *GreeterHandler,
	kind HandlerType,
	operation string,
	bind func(khttp.Context, *Req) error,
	call func(context.Context, *Req) (Resp, error),
) khttp.HandlerFunc {
	return func(c khttp.Context) error {
		var in Req
		if err := bind(c, &in); err != nil {
			return err
		}
		khttp.SetOperation(c, operation)
		handler := c.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			timeoutCtx, cancel := h.WithTimeout(ctx, kind)
			defer cancel()
			timeoutCtx = metadata.Inject(timeoutCtx, h.ExtractMetadata(ctx))
			return call(timeoutCtx, req.(*Req))
		})
		out, err := handler(c, &in)
		if err != nil {
			return err
		}
		return c.Result(http.StatusOK, out)
	}
}

func bindBody[Req any](c khttp.Context, in *Req) error {
	return c.Bind(in)
}

func bindSetLimit(c khttp.Context, in *dto.SetLimitRequest) error {
	if err := c.Bind(in); err != nil {
		return err
	}
	if in.Limit == nil {
		return errors.BadRequest(ReasonInvalidLimit, "limit is required")
	}
	return nil
}

func bindNone(khttp.Context, *struct{}) error { return nil }

func bindUser(c khttp.Context, in *userRequest) error {
	in.User = c.Vars().Get("user")
	return nil
}

func bindQueryUser(c khttp.Context, in *userRequest) error {
	in.User = c.Query().Get("user")
	return nil
}

func ack(err error) (*views.AckReply, error) {
	if err != nil {
		return nil, err
	}
	return &views.AckReply{OK: true}, nil
}
