package config

// APIConfig holds runtime configuration for the terminal API service.
type APIConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	DefaultTenantID    string
	FreeStorageDays    int
	EventHistoryLimit  int
	EventAsyncBuffer   int
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":4100"),
		DatabaseURL:        GetString("DATABASE_URL", ""),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		DefaultTenantID:    GetString("DEFAULT_TENANT_ID", "default"),
		FreeStorageDays:    GetInt("FREE_STORAGE_DAYS", 5),
		EventHistoryLimit:  GetInt("EVENT_HISTORY_LIMIT", 10000),
		EventAsyncBuffer:   GetInt("EVENT_ASYNC_BUFFER", 1024),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
