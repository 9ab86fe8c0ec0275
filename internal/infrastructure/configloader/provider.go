package configloader

import (
	"github.com/bionicotaku/lingo-services-greeter/internal/contract"
	loginfra "github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/logger"

	obswire "github.com/bionicotaku/lingo-utils/observability"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/wire"
)

// ProviderSet exposes configuration-derived dependencies for Wire graphs.
var ProviderSet = wire.NewSet(
	ProvideServiceMetadata,
	ProvideServerConfig,
	ProvideDataConfig,
	ProvideTasksConfig,
	ProvideTxConfig,
	ProvideRetention,
	ProvideObservabilityConfig,
	ProvideLoggerConfig,
)

// ProvideServiceMetadata returns the resolved ServiceMetadata.
func ProvideServiceMetadata(b *Bundle) ServiceMetadata {
	if b == nil {
		return ServiceMetadata{}
	}
	return b.Service
}

// ProvideServerConfig returns the server section of the bootstrap configuration.
func ProvideServerConfig(b *Bundle) *Server {
	if b == nil || b.Bootstrap == nil {
		return &Server{}
	}
	return &b.Bootstrap.Server
}

// ProvideDataConfig returns the data section of the bootstrap configuration.
func ProvideDataConfig(b *Bundle) *Data {
	if b == nil || b.Bootstrap == nil {
		return &Data{Driver: DriverMemory}
	}
	return &b.Bootstrap.Data
}

// ProvideTasksConfig returns the background task section.
func ProvideTasksConfig(b *Bundle) *Tasks {
	if b == nil || b.Bootstrap == nil {
		return &Tasks{}
	}
	return &b.Bootstrap.Tasks
}

// ProvideTxConfig returns the transaction manager configuration.
func ProvideTxConfig(b *Bundle) txmanager.Config {
	if b == nil {
		return txmanager.Config{}
	}
	return b.TxConfig
}

// ProvideRetention returns the contract retention policy.
func ProvideRetention(b *Bundle) contract.Retention {
	if b == nil {
		return contract.DefaultRetention
	}
	return b.Retention
}

// ProvideObservabilityConfig exposes the normalized observability configuration.
func ProvideObservabilityConfig(b *Bundle) obswire.ObservabilityConfig {
	if b == nil {
		return obswire.ObservabilityConfig{}
	}
	return b.ObsConfig
}

// ProvideLoggerConfig derives the logger configuration from service metadata.
func ProvideLoggerConfig(meta ServiceMetadata) loginfra.Config {
	return meta.LoggerConfig()
}
