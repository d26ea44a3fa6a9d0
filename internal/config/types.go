// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只存在 .env 文件中（YAML 中不存储任何密码）。
//	.env 文件同时被 Docker Compose（--env-file）、Go 应用（godotenv）共用。
//
// 环境：
//   - 开发: APP_ENV=dev → configs/dev.yaml + .env.dev
//   - 测试: APP_ENV=test → configs/test.yaml + .env.test
//   - 生产: APP_ENV=prod → /etc/bookstore-gateway/prod.yaml
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`   // 网关监听配置
	Upstream UpstreamConfig `yaml:"upstream"` // 后端 REST API
	Database DatabaseConfig `yaml:"database"` // 偏好存储数据库
	Redis    RedisConfig    `yaml:"redis"`    // 会话 / 购物车缓存 / 通知队列
	Session  SessionConfig  `yaml:"session"`  // 浏览器会话
	MinIO    MinIOConfig    `yaml:"minio"`    // 图片对象存储
	Mongo    MongoConfig    `yaml:"mongo"`    // 聊天记录（可选）
	Upload   UploadConfig   `yaml:"upload"`   // 上传限制
}

type ServerConfig struct {
	Port string `yaml:"port"` // 监听端口
}

// UpstreamConfig 后端 REST API 配置
type UpstreamConfig struct {
	URL     string        `yaml:"url"`     // 后端 API 根路径，如 http://backend:5000/api
	Timeout time.Duration `yaml:"timeout"` // 单次请求超时，0 使用客户端默认值
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres" 或 "sqlite"（默认 sqlite）
	Path     string `yaml:"path"`   // SQLite 文件路径
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从 DB_PASSWORD 环境变量读取
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"`   // 只从 REDIS_PASSWORD 环境变量读取
	URL      string `yaml:"url"` // 直接指定 URL（优先于 host/port/db）
}

// SessionConfig 浏览器会话配置
// 注意：Secret 只从 SESSION_SECRET 环境变量读取，不存储在 YAML 中
type SessionConfig struct {
	Secret     string        `yaml:"-"`           // 签名 + 凭证加密密钥的种子
	CookieName string        `yaml:"cookie_name"` // 默认 bg_session
	TTL        time.Duration `yaml:"ttl"`         // 会话存活时长，默认 168h
	Secure     bool          `yaml:"secure"`      // Cookie Secure 标志（生产开启）
}

// MinIOConfig MinIO 对象存储配置
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`   // 例如 localhost:9000
	AccessKey string `yaml:"-"`          // 只从 MINIO_ROOT_USER 环境变量读取
	SecretKey string `yaml:"-"`          // 只从 MINIO_ROOT_PASSWORD 环境变量读取
	UseSSL    bool   `yaml:"use_ssl"`    // 是否使用 HTTPS
	Bucket    string `yaml:"bucket"`     // 默认 bucket 名称
	PublicURL string `yaml:"public_url"` // 对外访问前缀，如 http://localhost:9000/bookstore
}

// MongoConfig 聊天记录存储配置（可选，URI 为空时不落库）
type MongoConfig struct {
	URI  string `yaml:"uri"`  // 如 mongodb://localhost:27017
	Name string `yaml:"name"` // 数据库名称
}

// UploadConfig 上传限制
type UploadConfig struct {
	MaxSizeMB int `yaml:"max_size_mb"` // 单文件上限，默认 5
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	APIPort        string
	Upstream       UpstreamConfig
	DatabaseDriver string // "postgres" 或 "sqlite"
	DatabaseURL    string
	RedisURL       string
	Session        SessionConfig
	MinIO          MinIOConfig
	Mongo          MongoConfig
	Upload         UploadConfig
	ConfigFilePath string // 实际加载的配置文件路径
}

// yamlConfigInternal 内部包装，记录配置文件来源（不参与 YAML 序列化）
type yamlConfigInternal struct {
	YAMLConfig `yaml:",inline"`
	loadedFrom string
}
