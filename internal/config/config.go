package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// configDir 由外部通过 SetConfigDir 指定，优先级最高
var configDir string

// envSearchDirs .env 文件搜索目录（仅 dev/test 使用，生产环境由 systemd 注入）
var envSearchDirs = []string{
	".",
	"..",
}

// SetConfigDir 设置配置文件目录（用于 --config 命令行参数）
func SetConfigDir(dir string) {
	configDir = dir
}

// Load 加载配置
// 1. 加载 .env.{env}（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 环境变量覆盖敏感字段，构建最终配置
func Load() *Config {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	loadEnvFiles(env)
	// .env 可能改写 APP_ENV
	env = parseEnv(getEnv("APP_ENV", string(env)))

	yamlCfg := loadYAMLConfig(env)

	dbPassword := getEnv("DB_PASSWORD", "")
	yamlCfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	yamlCfg.Session.Secret = getEnv("SESSION_SECRET", "")
	yamlCfg.MinIO.AccessKey = getEnv("MINIO_ROOT_USER", "")
	yamlCfg.MinIO.SecretKey = getEnv("MINIO_ROOT_PASSWORD", "")

	cfg := &Config{
		Env:            env,
		APIPort:        yamlCfg.Server.Port,
		Upstream:       yamlCfg.Upstream,
		DatabaseDriver: detectDatabaseDriver(yamlCfg.Database.Driver),
		DatabaseURL:    buildDatabaseURL(yamlCfg.Database, dbPassword),
		RedisURL:       buildRedisURL(yamlCfg.Redis),
		Session:        yamlCfg.Session,
		MinIO:          yamlCfg.MinIO,
		Mongo:          yamlCfg.Mongo,
		Upload:         yamlCfg.Upload,
		ConfigFilePath: yamlCfg.loadedFrom,
	}

	// 环境变量直接覆盖
	if v := os.Getenv("UPSTREAM_URL"); v != "" {
		cfg.Upstream.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}

	cfg.validate()
	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *yamlConfigInternal {
	cfg := &yamlConfigInternal{
		YAMLConfig: YAMLConfig{
			Server:   ServerConfig{Port: "8080"},
			Upstream: UpstreamConfig{URL: "http://localhost:5000/api", Timeout: 15 * time.Second},
			Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "bookstore", Name: "bookstore_gateway", SSLMode: "disable"},
			Redis:    RedisConfig{Host: "localhost", Port: 6379, DB: 0},
			Session:  SessionConfig{CookieName: "bg_session", TTL: 168 * time.Hour},
			MinIO:    MinIOConfig{Endpoint: "localhost:9000", Bucket: "bookstore"},
			Mongo:    MongoConfig{Name: "bookstore_chat"},
			Upload:   UploadConfig{MaxSizeMB: 5},
		},
	}

	paths := effectiveConfigPaths(env)

	for _, base := range paths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, &cfg.YAMLConfig)
			break
		}
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range paths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, &cfg.YAMLConfig)
			cfg.loadedFrom = path
			break
		}
	}

	return cfg
}

// effectiveConfigPaths 返回实际搜索路径
//
// 优先级：
//  1. --config 命令行参数（SetConfigDir）
//  2. CONFIG_DIR 环境变量
//  3. 按 APP_ENV 选择默认路径
func effectiveConfigPaths(env Environment) []string {
	if configDir != "" {
		return []string{configDir}
	}
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return []string{dir}
	}
	if env == EnvProduction {
		return []string{"/etc/bookstore-gateway"}
	}
	return []string{"configs", "../configs", "../../configs", "../../../configs"}
}

// loadEnvFiles 加载 .env 文件
//
// 生产环境不搜索 .env 文件（密码由 systemd EnvironmentFile 或 shell 环境注入）。
// godotenv.Load 不覆盖已有环境变量，优先级低于 shell 环境变量。
func loadEnvFiles(env Environment) {
	if env == EnvProduction {
		return
	}
	envFileName := fmt.Sprintf(".env.%s", string(env))
	for _, dir := range envSearchDirs {
		if err := godotenv.Load(filepath.Join(dir, envFileName)); err == nil {
			return
		}
	}
	// 回退到裸 .env
	for _, dir := range envSearchDirs {
		if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
			return
		}
	}
}

// detectDatabaseDriver 确定偏好存储驱动（sqlite 或 postgres，默认 sqlite）
func detectDatabaseDriver(yamlDriver string) string {
	switch strings.ToLower(yamlDriver) {
	case "postgres", "postgresql":
		return "postgres"
	default:
		return "sqlite"
	}
}

// buildDatabaseURL 构建偏好存储连接字符串
func buildDatabaseURL(db DatabaseConfig, password string) string {
	if detectDatabaseDriver(db.Driver) == "sqlite" {
		path := db.Path
		if path == "" {
			path = "/var/lib/bookstore-gateway/prefs.db"
		}
		return fmt.Sprintf("file:%s?cache=shared&mode=rwc", path)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.User, password, db.Host, db.Port, db.Name, db.SSLMode)
}

// buildRedisURL 构建 Redis 连接字符串
func buildRedisURL(redis RedisConfig) string {
	if redis.URL != "" {
		return redis.URL
	}
	if redis.Password != "" {
		return fmt.Sprintf("redis://:%s@%s:%d/%d", redis.Password, redis.Host, redis.Port, redis.DB)
	}
	return fmt.Sprintf("redis://%s:%d/%d", redis.Host, redis.Port, redis.DB)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// validate 填充运行所需的最低默认值
func (c *Config) validate() {
	if c.APIPort == "" {
		c.APIPort = "8080"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "bg_session"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 168 * time.Hour
	}
	if c.Session.Secret == "" && c.Env != EnvProduction {
		// dev/test 允许缺省密钥，生产环境必须显式注入
		c.Session.Secret = "bookstore-dev-secret"
	}
	if c.Upload.MaxSizeMB <= 0 {
		c.Upload.MaxSizeMB = 5
	}
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Upstream: %s, DB: %s(%s), Redis: %s}",
		c.Env, c.Upstream.URL, c.DatabaseDriver, maskPassword(c.DatabaseURL), maskPassword(c.RedisURL))
}

// maskPassword 隐藏密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/]*:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
