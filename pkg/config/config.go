package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Module = fx.Provide(NewConfig)

type IConfig interface {
	Get(key string) interface{}
	GetBool(key string) bool
	GetFloat64(key string) float64
	GetInt(key string) int
	GetInt64(key string) int64
	GetIntSlice(key string) []int
	GetString(key string) string
	GetStringMap(key string) map[string]interface{}
	GetStringMapString(key string) map[string]string
	UnmarshalKey(key string, val interface{}) error
	GetStringSlice(key string) []string
	GetDuration(key string) time.Duration
}

type config struct {
	cfg *viper.Viper
}

func NewConfig() IConfig {
	_ = godotenv.Load()

	cfg := viper.New()
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	setDefaults(cfg)

	_ = cfg.BindEnv("server.host", "SERVICE_HOST")
	_ = cfg.BindEnv("server.port", "SERVICE_HTTP_PORT")
	_ = cfg.BindEnv("logger.level", "LOG_LEVEL")
	_ = cfg.BindEnv("database.dns", "DATABASE_DNS")
	_ = cfg.BindEnv("database.migration", "DATABASE_MIGRATION")
	_ = cfg.BindEnv("database.host", "POSTGRES_HOST")
	_ = cfg.BindEnv("database.user", "POSTGRES_USER")
	_ = cfg.BindEnv("database.password", "POSTGRES_PASSWORD")
	_ = cfg.BindEnv("database.dbname", "POSTGRES_DATABASE")
	_ = cfg.BindEnv("database.port", "POSTGRES_PORT")
	_ = cfg.BindEnv("database.pool_max_conns", "POSTGRES_MAX_CONNECTION")
	_ = cfg.BindEnv("database.pool_max_conn_lifetime", "POSTGRES_POOL_MAX_CONN_LIFETIME")
	_ = cfg.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = cfg.BindEnv("redis.addrs", "REDIS_ADDRS")
	_ = cfg.BindEnv("redis.prefix", "REDIS_PREFIX")
	_ = cfg.BindEnv("auth.secret_key", "SECRET_KEY")
	_ = cfg.BindEnv("pincode.seed_path", "PINCODE_SEED_PATH")
	_ = cfg.BindEnv("geocoding.india_post_url", "INDIA_POST_URL")
	_ = cfg.BindEnv("geocoding.nominatim_url", "NOMINATIM_URL")
	_ = cfg.BindEnv("geocoding.user_agent", "NOMINATIM_USER_AGENT")
	_ = cfg.BindEnv("geocoding.timeout", "GEOCODING_TIMEOUT")
	_ = cfg.BindEnv("geocoding.cache_ttl", "GEOCODING_CACHE_TTL")
	_ = cfg.BindEnv("delivery.scan.range", "SCAN_RANGE")
	_ = cfg.BindEnv("delivery.scan.batch_size", "SCAN_BATCH_SIZE")
	_ = cfg.BindEnv("delivery.scan.batch_delay", "SCAN_BATCH_DELAY")

	if addrs := os.Getenv("REDIS_ADDRS"); addrs != "" {
		cfg.Set("redis.addrs", strings.Split(addrs, ","))
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Set("server.allowed_origins", strings.Split(origins, ","))
	}

	if cfg.GetString("database.dns") == "" {
		if dsn := BuildPostgresDSNFromViper(cfg); dsn != "" {
			cfg.Set("database.dns", dsn)
		}
	}
	if cfg.GetString("database.migration") == "" {
		if url := BuildPostgresURLFromViper(cfg); url != "" {
			cfg.Set("database.migration", url)
		}
	}

	return &config{cfg: cfg}
}

// NewFromMap builds a config from literal values on top of the defaults,
// without reading the environment.
func NewFromMap(values map[string]interface{}) IConfig {
	cfg := viper.New()
	setDefaults(cfg)
	for k, v := range values {
		cfg.Set(k, v)
	}
	return &config{cfg: cfg}
}

func setDefaults(cfg *viper.Viper) {
	cfg.SetDefault("server.port", ":8080")
	cfg.SetDefault("server.allowed_origins", []string{"http://localhost:5500"})
	cfg.SetDefault("logger.level", "info")
	cfg.SetDefault("redis.prefix", "currycrave")
	cfg.SetDefault("pincode.seed_path", "data/pincodes.json")
	cfg.SetDefault("geocoding.india_post_url", "https://api.postalpincode.in")
	cfg.SetDefault("geocoding.nominatim_url", "https://nominatim.openstreetmap.org")
	cfg.SetDefault("geocoding.country", "India")
	cfg.SetDefault("geocoding.user_agent", "CurryCrave-DeliveryApp/1.0")
	cfg.SetDefault("geocoding.timeout", 10*time.Second)
	cfg.SetDefault("geocoding.cache_ttl", 720*time.Hour)
	cfg.SetDefault("delivery.scan.range", 30)
	cfg.SetDefault("delivery.scan.batch_size", 5)
	cfg.SetDefault("delivery.scan.batch_delay", time.Second)
}

func (c *config) Get(key string) interface{} {
	return c.cfg.Get(key)
}

func (c *config) GetBool(key string) bool {
	return c.cfg.GetBool(key)
}

func (c *config) GetFloat64(key string) float64 {
	return c.cfg.GetFloat64(key)
}

func (c *config) GetInt(key string) int {
	return c.cfg.GetInt(key)
}

func (c *config) GetInt64(key string) int64 {
	return c.cfg.GetInt64(key)
}

func (c *config) GetIntSlice(key string) []int {
	return c.cfg.GetIntSlice(key)
}

func (c *config) GetString(key string) string {
	return c.cfg.GetString(key)
}

func (c *config) GetStringSlice(key string) []string {
	return c.cfg.GetStringSlice(key)
}

func (c *config) GetStringMap(key string) map[string]interface{} {
	return c.cfg.GetStringMap(key)
}
func (c *config) GetStringMapString(key string) map[string]string {
	return c.cfg.GetStringMapString(key)
}

func (c *config) UnmarshalKey(key string, val interface{}) error {
	return c.cfg.UnmarshalKey(key, val)
}

func (c *config) GetDuration(key string) time.Duration {
	return c.cfg.GetDuration(key)
}

func BuildPostgresDSNFromViper(v *viper.Viper) string {
	user := v.GetString("database.user")
	password := v.GetString("database.password")
	dbname := v.GetString("database.dbname")
	host := v.GetString("database.host")
	port := v.GetString("database.port")

	poolMaxConns := v.GetInt("database.pool_max_conns")
	if poolMaxConns == 0 {
		poolMaxConns = 10
	}
	poolLifetime := v.GetString("database.pool_max_conn_lifetime")
	if poolLifetime == "" {
		poolLifetime = "1h30m"
	}

	if user == "" && host == "" && dbname == "" {
		return ""
	}

	parts := []string{}
	if user != "" {
		parts = append(parts, "user="+user)
	}
	if password != "" {
		parts = append(parts, "password="+password)
	}
	if dbname != "" {
		parts = append(parts, "dbname="+dbname)
	}
	if host != "" {
		parts = append(parts, "host="+host)
	}
	if port != "" {
		parts = append(parts, "port="+port)
	}
	parts = append(parts, fmt.Sprintf("pool_max_conns=%d", poolMaxConns))
	parts = append(parts, fmt.Sprintf("pool_max_conn_lifetime=%s", poolLifetime))

	return strings.Join(parts, " ")
}

func BuildPostgresURLFromViper(v *viper.Viper) string {
	user := v.GetString("database.user")
	password := v.GetString("database.password")
	host := v.GetString("database.host")
	port := v.GetString("database.port")
	dbname := v.GetString("database.dbname")

	if user == "" || host == "" || dbname == "" {
		return ""
	}

	hostport := host
	if port != "" {
		hostport = net.JoinHostPort(host, port)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     hostport,
		Path:     "/" + dbname,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
