package config

import (
	"io/fs"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 PORTAL_MYSQL_HOST
const EnvPrefix = "PORTAL"

var (
	instance *Config
	mu       sync.RWMutex
)

// Get 获取全局配置，需先调用 Init 或 Set
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Set 替换全局配置，测试和命令行工具使用
func Set(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = c
}

// Init 按 .env -> config.yaml -> 环境变量 的顺序加载配置
func Init() {
	c, err := Load(os.Getenv(EnvPrefix + "_CONFIG"))
	if err != nil {
		panic(err)
	}
	Set(c)
}

// Load 读取配置文件，path 为空时在当前目录和 ./config 下查找 config.yaml
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "加载 .env 失败")
	}

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "读取配置文件失败")
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "解析配置文件失败")
	}
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return nil, errors.Wrap(err, "解析环境变量失败")
	}
	return c, nil
}

// Default 仅包含默认值的配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		panic(err)
	}
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("prefix", "api")
	v.SetDefault("mode", string(ModeDebug))

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.root", "./upload")
	v.SetDefault("storage.max_upload_mb", 50)

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.db_name", "project_portal")

	v.SetDefault("redis.port", "6379")

	v.SetDefault("jwt.access_secret", "change-me")
	v.SetDefault("jwt.access_expire", 7*24*3600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("notify.timeout_sec", 5)
}
