package repositories

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-greeter/internal/contract"
	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/data"
	"github.com/bionicotaku/lingo-services-greeter/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
)

// ArchiveCounter 统计保留期已过、等待恢复的合约条目。条目从不删除。
type ArchiveCounter interface {
	CountArchived(ctx context.Context) (int64, error)
}

// ContractBackend 聚合按 data.driver 选定的事务管理器与存储实现。
type ContractBackend struct {
	TxManager txmanager.Manager
	Store     services.ContractStoreRepo
	Archive   ArchiveCounter
}

// NewContractBackend 根据 Data 中已初始化的资源组装合约后端。
func NewContractBackend(d *data.Data, txCfg txmanager.Config, retention contract.Retention, logger log.Logger) (*ContractBackend, error) {
	if d == nil {
		return nil, fmt.Errorf("contract backend: data is required")
	}
	if d.Pool == nil {
		mem := NewMemoryContractBackend(d.Memory, logger)
		return &ContractBackend{TxManager: mem, Store: mem, Archive: mem}, nil
	}

	mgr, err := txmanager.NewManager(d.Pool, txCfg, txmanager.Dependencies{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("contract backend: tx manager: %w", err)
	}
	repo := NewContractStoreRepository(d.Pool, logger).WithMinTTL(retention.ExtendTo)
	return &ContractBackend{TxManager: mgr, Store: repo, Archive: repo}, nil
}

// ProvideTxManager exposes the backend transaction manager.
func ProvideTxManager(b *ContractBackend) txmanager.Manager { return b.TxManager }

// ProvideContractStore exposes the backend store.
func ProvideContractStore(b *ContractBackend) services.ContractStoreRepo { return b.Store }

// ProvideArchiveCounter exposes the backend archive counter.
func ProvideArchiveCounter(b *ContractBackend) ArchiveCounter { return b.Archive }
