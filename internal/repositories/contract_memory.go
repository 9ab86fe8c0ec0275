package repositories

import (
	"context"
	"sync"

	"github.com/bionicotaku/lingo-services-greeter/internal/contract"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
)

// MemoryContractBackend 在进程内承载合约状态，供 data.driver=memory 使用。
// 它同时充当 txmanager.Manager：一个进程级互斥锁串行化所有操作，
// 回调返回 nil 时提交暂存写入，否则整体丢弃。
type MemoryContractBackend struct {
	mu    sync.Mutex
	store *contract.MemoryStore
	log   *log.Helper
}

// NewMemoryContractBackend 构造内存后端。
func NewMemoryContractBackend(store *contract.MemoryStore, logger log.Logger) *MemoryContractBackend {
	if store == nil {
		store = contract.NewMemoryStore()
	}
	return &MemoryContractBackend{
		store: store,
		log:   log.NewHelper(logger),
	}
}

type memorySession struct {
	ctx context.Context
	txn *contract.MemoryTxn
}

func (s *memorySession) Tx() pgx.Tx               { return nil }
func (s *memorySession) Context() context.Context { return s.ctx }

// WithinTx 在互斥锁内执行 fn，并按结果提交或回滚。
func (b *MemoryContractBackend) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	sess := &memorySession{ctx: ctx, txn: b.store.Begin()}
	if err := fn(ctx, sess); err != nil {
		sess.txn.Rollback()
		return err
	}
	sess.txn.Commit()
	return nil
}

// WithinReadOnlyTx 与 WithinTx 相同，只读操作不会产生暂存写入。
func (b *MemoryContractBackend) WithinReadOnlyTx(ctx context.Context, opts txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return b.WithinTx(ctx, opts, fn)
}

// Bind 返回会话内的暂存视图；不属于本后端的会话直接访问底层存储。
func (b *MemoryContractBackend) Bind(sess txmanager.Session) contract.Store {
	if ms, ok := sess.(*memorySession); ok && ms.txn != nil {
		return ms.txn
	}
	return b.store
}

// CountArchived 统计等待恢复的归档条目。
func (b *MemoryContractBackend) CountArchived(ctx context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.CountArchived(ctx)
}

var _ txmanager.Manager = (*MemoryContractBackend)(nil)
