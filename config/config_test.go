package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, "8080", c.Port)
	require.Equal(t, "api", c.Prefix)
	require.Equal(t, ModeDebug, c.Mode)
	require.Equal(t, "local", c.Storage.Driver)
	require.EqualValues(t, 50, c.Storage.MaxUploadMB)
	require.EqualValues(t, 7*24*3600, c.JWT.AccessExpire)
	require.Equal(t, 5, c.Notify.TimeoutSec)
	require.Empty(t, c.Redis.Host)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
mode: release
mysql:
  host: db.internal
  db_name: portal
storage:
  driver: s3
  s3:
    bucket: files
cors:
  allow_origins:
    - https://portal.example.com
`), 0o644))

	// 在临时目录中运行，避免读到仓库里的 .env
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("PORTAL_MYSQL_PASSWORD", "from-env")
	t.Setenv("PORTAL_PORT", "9100")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9100", c.Port)
	require.Equal(t, ModeRelease, c.Mode)
	require.Equal(t, "db.internal", c.Mysql.Host)
	require.Equal(t, "3306", c.Mysql.Port)
	require.Equal(t, "portal", c.Mysql.DBName)
	require.Equal(t, "from-env", c.Mysql.Password)
	require.Equal(t, "s3", c.Storage.Driver)
	require.Equal(t, "files", c.Storage.S3.Bucket)
	require.Equal(t, []string{"https://portal.example.com"}, c.Cors.AllowOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
