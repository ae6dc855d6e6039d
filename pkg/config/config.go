package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Assets        AssetsConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.DB.applyEnvSSLMode(cfg.App); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string        `envconfig:"FARMLOG_APP_ENV" required:"true"`
	Port           string        `envconfig:"FARMLOG_APP_PORT" required:"true"`
	LogLevel       string        `envconfig:"FARMLOG_LOG_LEVEL" default:"info"`
	LogWarnStack   bool          `envconfig:"FARMLOG_LOG_WARN_STACK" default:"false"`
	RequestTimeout time.Duration `envconfig:"FARMLOG_REQUEST_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"FARMLOG_DB_DSN"`

	LegacyHost     string `envconfig:"FARMLOG_DB_HOST"`
	LegacyPort     int    `envconfig:"FARMLOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FARMLOG_DB_USER"`
	LegacyPassword string `envconfig:"FARMLOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"FARMLOG_DB_NAME"`
	SSLMode        string `envconfig:"FARMLOG_DB_SSLMODE"`

	MaxOpenConns    int           `envconfig:"FARMLOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FARMLOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FARMLOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FARMLOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	RetryAttempts int           `envconfig:"FARMLOG_DB_RETRY_ATTEMPTS" default:"3"`
	RetryBackoff  time.Duration `envconfig:"FARMLOG_DB_RETRY_BACKOFF" default:"100ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMLOG_REDIS_URL"`
	Address      string        `envconfig:"FARMLOG_REDIS_ADDR"`
	Password     string        `envconfig:"FARMLOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMLOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMLOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FARMLOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FARMLOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMLOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMLOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. Rate
// limiting degrades to a no-op when it was not.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type AssetsConfig struct {
	Dir            string        `envconfig:"FARMLOG_UPLOAD_DIR" default:"uploads"`
	MaxUploadMB    int           `envconfig:"FARMLOG_MAX_UPLOAD_MB" default:"20"`
	SweepGraceTime time.Duration `envconfig:"FARMLOG_ASSET_SWEEP_GRACE" default:"24h"`
	SweepInterval  time.Duration `envconfig:"FARMLOG_ASSET_SWEEP_INTERVAL" default:"6h"`
}

// MaxUploadBytes returns the configured upload cap in bytes.
func (a AssetsConfig) MaxUploadBytes() int64 {
	return int64(a.MaxUploadMB) << 20
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FARMLOG_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FARMLOG_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FARMLOG_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FARMLOG_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FARMLOG_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow       time.Duration `envconfig:"FARMLOG_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit    int           `envconfig:"FARMLOG_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit      int           `envconfig:"FARMLOG_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow    time.Duration `envconfig:"FARMLOG_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUserLimit int           `envconfig:"FARMLOG_AUTH_RATE_LIMIT_REGISTER_USER_LIMIT" default:"3"`
	RegisterIPLimit   int           `envconfig:"FARMLOG_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FARMLOG_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	db.DSN = (&url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}).String()
	return nil
}

// applyEnvSSLMode stamps the sslmode query parameter onto the DSN. In prod the
// default is "require", which encrypts the connection but skips server
// certificate verification; set FARMLOG_DB_SSLMODE=verify-full to opt into
// full verification.
func (db *DBConfig) applyEnvSSLMode(app AppConfig) error {
	mode := db.SSLMode
	if mode == "" {
		if app.IsProd() {
			mode = "require"
		} else {
			mode = "disable"
		}
	}

	u, err := url.Parse(db.DSN)
	if err != nil {
		return fmt.Errorf("parsing db dsn: %w", err)
	}
	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", mode)
		u.RawQuery = q.Encode()
		db.DSN = u.String()
	}
	return nil
}
