package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bionicotaku/lingo-services-greeter/internal/contract"
	"github.com/bionicotaku/lingo-services-greeter/internal/models/vo"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
)

// MaxAddressLength bounds the byte length of a principal identifier.
const MaxAddressLength = 256

// ContractStoreRepo binds the contract store to a transaction session.
type ContractStoreRepo interface {
	Bind(sess txmanager.Session) contract.Store
}

// GreeterUsecase runs the greeting contract operations. Each call executes in
// exactly one transaction; a failed call persists nothing.
type GreeterUsecase struct {
	repo      ContractStoreRepo
	txManager txmanager.Manager
	retention contract.Retention
	metrics   *contractMetrics
	log       *log.Helper
}

// NewGreeterUsecase constructs a Greeter usecase.
func NewGreeterUsecase(repo ContractStoreRepo, tx txmanager.Manager, retention contract.Retention, logger log.Logger) *GreeterUsecase {
	helper := log.NewHelper(logger)
	return &GreeterUsecase{
		repo:      repo,
		txManager: tx,
		retention: retention,
		metrics:   newContractMetrics(helper),
		log:       helper,
	}
}

// Initialize stores admin as the contract owner.
func (uc *GreeterUsecase) Initialize(ctx context.Context, admin string) error {
	addr, err := parseAddress("admin", admin)
	if err != nil {
		return err
	}
	err = uc.write(ctx, opInitialize, func(txCtx context.Context, state *contract.ContractState) error {
		return state.Initialize(txCtx, addr)
	})
	if err != nil {
		return err
	}
	uc.log.WithContext(ctx).Infof("contract initialized: admin=%s", addr)
	return nil
}

// Greet records a greeting from caller. The caller is trusted as given.
func (uc *GreeterUsecase) Greet(ctx context.Context, caller, text string) (*vo.Greeting, error) {
	addr, err := parseAddress("caller", caller)
	if err != nil {
		return nil, err
	}
	var result vo.Greeting
	err = uc.write(ctx, opGreet, func(txCtx context.Context, state *contract.ContractState) error {
		token, err := state.Greet(txCtx, addr, text)
		if err != nil {
			return err
		}
		if result.GreetingCount, err = state.GetCounter(txCtx); err != nil {
			return err
		}
		if result.UserCount, err = state.GetUserCounter(txCtx, addr); err != nil {
			return err
		}
		result.Token = token
		result.Caller = string(addr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.WithContext(ctx).Debugf("greet: caller=%s bytes=%d total=%d", addr, len(text), result.GreetingCount)
	return &result, nil
}

// GetCounter returns the global greeting count.
func (uc *GreeterUsecase) GetCounter(ctx context.Context) (uint32, error) {
	var count uint32
	err := uc.read(ctx, opGetCounter, func(txCtx context.Context, state *contract.ContractState) error {
		var err error
		count, err = state.GetCounter(txCtx)
		return err
	})
	return count, err
}

// GetLastGreeting returns the last text accepted from user.
func (uc *GreeterUsecase) GetLastGreeting(ctx context.Context, user string) (*vo.LastGreeting, error) {
	addr, err := parseAddress("user", user)
	if err != nil {
		return nil, err
	}
	result := &vo.LastGreeting{User: string(addr)}
	err = uc.read(ctx, opGetLastGreeting, func(txCtx context.Context, state *contract.ContractState) error {
		var err error
		result.Text, result.Found, err = state.GetLastGreeting(txCtx, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetUserCounter returns how many times user has greeted.
func (uc *GreeterUsecase) GetUserCounter(ctx context.Context, user string) (uint32, error) {
	addr, err := parseAddress("user", user)
	if err != nil {
		return 0, err
	}
	var count uint32
	err = uc.read(ctx, opGetUserCounter, func(txCtx context.Context, state *contract.ContractState) error {
		var err error
		count, err = state.GetUserCounter(txCtx, addr)
		return err
	})
	return count, err
}

// ResetCounter zeroes the global counter. Admin only.
func (uc *GreeterUsecase) ResetCounter(ctx context.Context, caller string) error {
	addr, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	err = uc.write(ctx, opResetCounter, func(txCtx context.Context, state *contract.ContractState) error {
		return state.ResetCounter(txCtx, addr)
	})
	if err != nil {
		return err
	}
	uc.log.WithContext(ctx).Infof("greeting counter reset: admin=%s", addr)
	return nil
}

// TransferAdmin hands the admin role to newAdmin. Admin only.
func (uc *GreeterUsecase) TransferAdmin(ctx context.Context, caller, newAdmin string) error {
	from, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	to, err := parseAddress("new_admin", newAdmin)
	if err != nil {
		return err
	}
	err = uc.write(ctx, opTransferAdmin, func(txCtx context.Context, state *contract.ContractState) error {
		return state.TransferAdmin(txCtx, from, to)
	})
	if err != nil {
		return err
	}
	uc.log.WithContext(ctx).Infof("admin transferred: from=%s to=%s", from, to)
	return nil
}

// SetLimit replaces the character limit. Admin only.
func (uc *GreeterUsecase) SetLimit(ctx context.Context, caller string, limit uint32) error {
	addr, err := parseAddress("caller", caller)
	if err != nil {
		return err
	}
	err = uc.write(ctx, opSetLimit, func(txCtx context.Context, state *contract.ContractState) error {
		return state.SetLimit(txCtx, addr, limit)
	})
	if err != nil {
		return err
	}
	uc.log.WithContext(ctx).Infof("character limit set: admin=%s limit=%d", addr, limit)
	return nil
}

// GetLimit returns the current character limit.
func (uc *GreeterUsecase) GetLimit(ctx context.Context) (uint32, error) {
	var limit uint32
	err := uc.read(ctx, opGetLimit, func(txCtx context.Context, state *contract.ContractState) error {
		var err error
		limit, err = state.GetLimit(txCtx)
		return err
	})
	return limit, err
}

// GetAdmin returns the current admin, if any.
func (uc *GreeterUsecase) GetAdmin(ctx context.Context) (*vo.Admin, error) {
	result := &vo.Admin{}
	err := uc.read(ctx, opGetAdmin, func(txCtx context.Context, state *contract.ContractState) error {
		admin, ok, err := state.GetAdmin(txCtx)
		result.Address, result.Initialized = string(admin), ok
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Snapshot reads the whole contract state in one transaction. user may be empty.
func (uc *GreeterUsecase) Snapshot(ctx context.Context, user string) (*vo.ContractSnapshot, error) {
	addr, err := parseOptionalAddress("user", user)
	if err != nil {
		return nil, err
	}
	var snap contract.Snapshot
	err = uc.read(ctx, opSnapshot, func(txCtx context.Context, state *contract.ContractState) error {
		var err error
		snap, err = state.Snapshot(txCtx, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return vo.NewContractSnapshot(snap), nil
}

// Restore revives archived contract entries and, when user is set, that
// user's records. Anyone may call it.
func (uc *GreeterUsecase) Restore(ctx context.Context, user string) (*vo.Restored, error) {
	addr, err := parseOptionalAddress("user", user)
	if err != nil {
		return nil, err
	}
	result := &vo.Restored{User: string(addr)}
	err = uc.write(ctx, opRestore, func(txCtx context.Context, state *contract.ContractState) error {
		var err error
		result.Restored, err = state.Restore(txCtx, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Restored > 0 {
		uc.log.WithContext(ctx).Infof("contract entries restored: count=%d user=%s", result.Restored, addr)
	}
	return result, nil
}

type stateFunc func(ctx context.Context, state *contract.ContractState) error

func (uc *GreeterUsecase) write(ctx context.Context, op string, fn stateFunc) error {
	err := uc.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		return fn(txCtx, contract.NewState(uc.repo.Bind(sess), uc.retention))
	})
	return uc.finish(ctx, op, err)
}

func (uc *GreeterUsecase) read(ctx context.Context, op string, fn stateFunc) error {
	err := uc.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		return fn(txCtx, contract.NewState(uc.repo.Bind(sess), uc.retention))
	})
	return uc.finish(ctx, op, err)
}

func (uc *GreeterUsecase) finish(ctx context.Context, op string, err error) error {
	if err == nil {
		uc.metrics.record(ctx, op, resultOK)
		return nil
	}
	mapped := uc.mapError(ctx, op, err)
	uc.metrics.record(ctx, op, resultLabel(err))
	return mapped
}

// parseAddress takes raw verbatim. Surrounding whitespace is an error.
func parseAddress(field, raw string) (contract.Address, error) {
	switch {
	case strings.TrimSpace(raw) == "":
		return "", invalidAddress(field, "is required")
	case strings.TrimSpace(raw) != raw:
		return "", invalidAddress(field, "must not have surrounding whitespace")
	case len(raw) > MaxAddressLength:
		return "", invalidAddress(field, "is too long")
	case !utf8.ValidString(raw):
		return "", invalidAddress(field, "must be valid UTF-8")
	}
	return contract.Address(raw), nil
}

func parseOptionalAddress(field, raw string) (contract.Address, error) {
	if raw == "" {
		return "", nil
	}
	return parseAddress(field, raw)
}
