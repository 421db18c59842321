package test

import (
	"testing"

	"project-portal/config"
	"project-portal/internal/global/cache"
	"project-portal/internal/global/database"
	"project-portal/internal/global/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const JWTSecret = "test-secret"

// Config 测试配置：本地存储放在临时目录，上传上限 1MB
func Config(t *testing.T) *config.Config {
	c := config.Default()
	c.JWT.AccessSecret = JWTSecret
	c.Storage.Driver = "local"
	c.Storage.Root = t.TempDir()
	c.Storage.MaxUploadMB = 1
	return c
}

// Setup 初始化配置、内存 SQLite 和本地存储，返回 database.DB
func Setup(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := Config(t)
	config.Set(cfg)

	// 内存库每个连接都是独立的库，只保留一个连接
	db, err := database.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	database.DB = db
	cache.Client = nil
	storage.Default = storage.NewLocal(cfg.Storage.Root)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// SetupRedis 启动 miniredis 并替换 cache.Client
func SetupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.Client = client
	t.Cleanup(func() {
		cache.Client = nil
		_ = client.Close()
	})
	return mr
}
