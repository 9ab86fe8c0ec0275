package httpserver

import (
	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/data"

	"github.com/google/wire"
)

// ProviderSet is the HTTP server providers.
var ProviderSet = wire.NewSet(
	NewTelemetry,
	NewHTTPServer,
	wire.Bind(new(ReadinessChecker), new(*data.Data)),
)
