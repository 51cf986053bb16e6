package config

const (
	EnvPrefix = "SHOPDASH"

	EnvAppEnv       = "SHOPDASH_APP_ENV"
	EnvLogLevel     = "SHOPDASH_LOG_LEVEL"
	EnvLogWarnStack = "SHOPDASH_LOG_WARN_STACK"
	EnvProfile      = "SHOPDASH_PROFILE"

	EnvAPIURL      = "SHOPDASH_API_URL"
	EnvHTTPTimeout = "SHOPDASH_HTTP_TIMEOUT"
	EnvPageSize    = "SHOPDASH_PAGE_SIZE"

	EnvSessionBackend = "SHOPDASH_SESSION_BACKEND"
	EnvSessionPath    = "SHOPDASH_SESSION_PATH"
	EnvSQLitePath     = "SHOPDASH_SQLITE_PATH"

	EnvRedisURL  = "SHOPDASH_REDIS_URL"
	EnvRedisAddr = "SHOPDASH_REDIS_ADDR"

	EnvTopCustomers  = "SHOPDASH_TOP_CUSTOMERS"
	EnvRangeDays     = "SHOPDASH_DASHBOARD_RANGE_DAYS"
	EnvCallbackAddr  = "SHOPDASH_CALLBACK_ADDR"
	EnvCallbackRoute = "SHOPDASH_CALLBACK_PATH"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SessionBackendFile   = "file"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
	SessionBackendSQLite = "sqlite"
)
