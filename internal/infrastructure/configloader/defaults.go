package configloader

import "time"

const (
	// defaultConfPath is the fallback configuration directory when no overrides are provided.
	defaultConfPath = "configs"
	// defaultServiceName is used when SERVICE_NAME is missing.
	defaultServiceName = "lingo-services-greeter"
	// defaultServiceVersion is used when SERVICE_VERSION is missing.
	defaultServiceVersion = "dev"
	// defaultEnvironment is used when APP_ENV is missing.
	defaultEnvironment = "development"
	// defaultHTTPAddr is the listen address when server.http.addr is empty.
	defaultHTTPAddr = "0.0.0.0:8000"
	// defaultHTTPTimeout bounds a single request.
	defaultHTTPTimeout = 5 * time.Second
	// defaultMetadataPrefix selects headers propagated into the request metadata.
	defaultMetadataPrefix = "x-md-"
	// defaultScanInterval is how often the retention task counts archived entries.
	defaultScanInterval = time.Minute

	defaultIsolation  = "serializable"
	defaultMaxRetries = 3

	// DriverPostgres stores contract entries in greeter.contract_entries.
	DriverPostgres = "postgres"
	// DriverMemory keeps contract entries in process memory.
	DriverMemory = "memory"
)

// applyDefaults fills zero values that have a sensible fallback.
func applyDefaults(bc *Bootstrap) {
	if bc.Server.HTTP.Network == "" {
		bc.Server.HTTP.Network = "tcp"
	}
	if bc.Server.HTTP.Addr == "" {
		bc.Server.HTTP.Addr = defaultHTTPAddr
	}
	if bc.Server.HTTP.Timeout == 0 {
		bc.Server.HTTP.Timeout = Duration(defaultHTTPTimeout)
	}
	if len(bc.Server.MetadataPrefixes) == 0 {
		bc.Server.MetadataPrefixes = []string{defaultMetadataPrefix}
	}
	if bc.Data.Driver == "" {
		bc.Data.Driver = DriverPostgres
	}
	// Greet is read-modify-write on shared counters; weaker isolation loses updates.
	if tx := &bc.Data.Postgres.Transaction; tx.DefaultIsolation == "" {
		tx.DefaultIsolation = defaultIsolation
		if tx.MaxRetries == 0 {
			tx.MaxRetries = defaultMaxRetries
		}
	}
	if bc.Tasks.Retention.Interval == 0 {
		bc.Tasks.Retention.Interval = Duration(defaultScanInterval)
	}
}
