package constants

import "time"

const (
	FreshnessWindow  = 30 * time.Minute
	UpdateLockWindow = 30 * time.Minute
	CountdownTick    = 1 * time.Second
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultAPIVersion      = "v1"
	DefaultUpstreamBaseURL = "https://marvelrivalsapi.com/api"
	AssetBaseURL           = "https://marvelrivalsapi.com/rivals"
	DefaultBannerPath      = "/images/banners/default_banner.jpg"
	APIKeyHeader           = "x-api-key"
)

const (
	PlayerCachePrefix = "playerStats:"
	UpdateLockPrefix  = "playerUpdateLock:"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

const (
	LocalNamespace   = "local"
	SessionNamespace = "session:"
	SessionRetention = 24 * time.Hour
	RedisKeyPrefix   = "rivals-tracker:"
)

// durable key holding the session id of the last viewer run
const LastSessionKey = "viewerSession"
