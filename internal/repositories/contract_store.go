// Package repositories 提供数据访问层实现，负责与持久化存储交互。
// 该层实现 Service 层定义的 Repository 接口，隔离底层存储细节。
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-greeter/internal/contract"
	"github.com/bionicotaku/lingo-services-greeter/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier 抽象 pgxpool.Pool 与 pgx.Tx 的公共查询能力。
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	getEntrySQL = `
SELECT key, storage_class, value, expires_at, updated_at
FROM greeter.contract_entries
WHERE key = $1`

	// 新建条目从最小保留期开始计算；已存在且未过期的条目保留原 expires_at；
	// 已归档的条目不被覆盖，RowsAffected 为 0。
	upsertEntrySQL = `
INSERT INTO greeter.contract_entries (key, storage_class, value, expires_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (key) DO UPDATE SET
    value = EXCLUDED.value,
    storage_class = EXCLUDED.storage_class,
    updated_at = EXCLUDED.updated_at
WHERE greeter.contract_entries.expires_at > EXCLUDED.updated_at`

	// 仅当剩余保留期低于阈值且新期限更晚时才延长。
	extendEntrySQL = `
UPDATE greeter.contract_entries
SET expires_at = $2
WHERE key = $1
  AND expires_at > $3
  AND expires_at < $4
  AND expires_at < $2`

	restoreEntrySQL = `
UPDATE greeter.contract_entries
SET expires_at = $2, updated_at = $3
WHERE key = $1 AND expires_at <= $3`

	countArchivedSQL = `
SELECT count(*) FROM greeter.contract_entries
WHERE expires_at <= $1`
)

// ContractStoreRepository 封装 greeter.contract_entries 表的访问逻辑。
type ContractStoreRepository struct {
	db     *pgxpool.Pool
	now    func() time.Time
	minTTL time.Duration
	log    *log.Helper
}

// NewContractStoreRepository 构造 ContractStoreRepository。
func NewContractStoreRepository(db *pgxpool.Pool, logger log.Logger) *ContractStoreRepository {
	return &ContractStoreRepository{
		db:     db,
		now:    time.Now,
		minTTL: contract.DefaultRetention.ExtendTo,
		log:    log.NewHelper(logger),
	}
}

// WithClock 替换时间来源，主要用于测试。
func (r *ContractStoreRepository) WithClock(now func() time.Time) *ContractStoreRepository {
	if now != nil {
		r.now = now
	}
	return r
}

// WithMinTTL 设置新建条目的初始保留期。
func (r *ContractStoreRepository) WithMinTTL(d time.Duration) *ContractStoreRepository {
	if d > 0 {
		r.minTTL = d
	}
	return r
}

// Bind 返回绑定到事务会话的 contract.Store；sess 为 nil 时直接使用连接池。
func (r *ContractStoreRepository) Bind(sess txmanager.Session) contract.Store {
	var q querier = r.db
	if sess != nil && sess.Tx() != nil {
		q = sess.Tx()
	}
	return &pgStore{repo: r, q: q}
}

// FindEntry 读取一条原始记录，已归档的条目同样返回。
func (r *ContractStoreRepository) FindEntry(ctx context.Context, sess txmanager.Session, key contract.Key) (*po.ContractEntry, error) {
	store := r.Bind(sess).(*pgStore)
	return store.find(ctx, key)
}

// CountArchived 统计保留期已过、等待恢复的条目数量。
func (r *ContractStoreRepository) CountArchived(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, countArchivedSQL, r.now().UTC()).Scan(&n); err != nil {
		r.log.WithContext(ctx).Errorf("count archived contract entries failed: err=%v", err)
		return 0, fmt.Errorf("count archived contract entries: %w", err)
	}
	return n, nil
}

type pgStore struct {
	repo *ContractStoreRepository
	q    querier
}

func (s *pgStore) find(ctx context.Context, key contract.Key) (*po.ContractEntry, error) {
	var (
		entry     po.ContractEntry
		expiresAt = timestamptzFromTime(time.Time{})
		updatedAt = timestamptzFromTime(time.Time{})
	)
	err := s.q.QueryRow(ctx, getEntrySQL, key.String()).
		Scan(&entry.Key, &entry.StorageClass, &entry.Value, &expiresAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.repo.log.WithContext(ctx).Errorf("get contract entry failed: key=%s err=%v", key, err)
		return nil, fmt.Errorf("get contract entry %s: %w", key, err)
	}
	entry.ExpiresAt = timeFromTimestamptz(expiresAt)
	entry.UpdatedAt = timeFromTimestamptz(updatedAt)
	return &entry, nil
}

// findLive 读取条目；条目已归档时返回 contract.ErrArchived。
func (s *pgStore) findLive(ctx context.Context, key contract.Key) (*po.ContractEntry, error) {
	entry, err := s.find(ctx, key)
	if err != nil || entry == nil {
		return nil, err
	}
	if !entry.Live(s.repo.now().UTC()) {
		return nil, archived(key)
	}
	return entry, nil
}

func (s *pgStore) Get(ctx context.Context, key contract.Key) ([]byte, bool, error) {
	entry, err := s.findLive(ctx, key)
	if err != nil || entry == nil {
		return nil, false, err
	}
	return entry.Value, true, nil
}

func (s *pgStore) Set(ctx context.Context, key contract.Key, value []byte) error {
	now := s.repo.now().UTC()
	tag, err := s.q.Exec(ctx, upsertEntrySQL,
		key.String(),
		string(key.Class()),
		value,
		timestamptzFromTime(now.Add(s.repo.minTTL)),
		timestamptzFromTime(now),
	)
	if err != nil {
		s.repo.log.WithContext(ctx).Errorf("upsert contract entry failed: key=%s err=%v", key, err)
		return fmt.Errorf("upsert contract entry %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return archived(key)
	}
	return nil
}

func (s *pgStore) Has(ctx context.Context, key contract.Key) (bool, error) {
	entry, err := s.findLive(ctx, key)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

func (s *pgStore) ExtendTTL(ctx context.Context, key contract.Key, threshold, extendTo time.Duration) error {
	entry, err := s.findLive(ctx, key)
	if err != nil || entry == nil {
		return err
	}
	now := s.repo.now().UTC()
	_, err = s.q.Exec(ctx, extendEntrySQL,
		key.String(),
		timestamptzFromTime(now.Add(extendTo)),
		timestamptzFromTime(now),
		timestamptzFromTime(now.Add(threshold)),
	)
	if err != nil {
		s.repo.log.WithContext(ctx).Errorf("extend contract entry failed: key=%s err=%v", key, err)
		return fmt.Errorf("extend contract entry %s: %w", key, err)
	}
	return nil
}

func (s *pgStore) Restore(ctx context.Context, key contract.Key, extendTo time.Duration) (bool, error) {
	if extendTo <= 0 {
		extendTo = s.repo.minTTL
	}
	now := s.repo.now().UTC()
	tag, err := s.q.Exec(ctx, restoreEntrySQL,
		key.String(),
		timestamptzFromTime(now.Add(extendTo)),
		timestamptzFromTime(now),
	)
	if err != nil {
		s.repo.log.WithContext(ctx).Errorf("restore contract entry failed: key=%s err=%v", key, err)
		return false, fmt.Errorf("restore contract entry %s: %w", key, err)
	}
	return tag.RowsAffected() > 0, nil
}

func archived(key contract.Key) error {
	return fmt.Errorf("contract entry %s: %w", key, contract.ErrArchived)
}

var _ contract.Store = (*pgStore)(nil)
