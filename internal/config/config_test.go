package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "civicvoice", cfg.Database.Name)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenTTL.Std())
	assert.Equal(t, 10, cfg.RateLimit.CommentsPerDay)
	assert.Equal(t, 10*time.Second, cfg.Moderation.Timeout.Std())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
rate_limit:
  comments_per_day: 3
moderation:
  timeout: 5s
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.RateLimit.CommentsPerDay)
	assert.Equal(t, 5*time.Second, cfg.Moderation.Timeout.Std())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.Moderation.APIKey)
}

func TestDSN(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)
	cfg.Database.User = "app"
	cfg.Database.Password = "p@ss/word"

	mc, err := mysqldriver.ParseDSN(cfg.DSN())
	assert.NoError(t, err)
	assert.Equal(t, "app", mc.User)
	assert.Equal(t, "p@ss/word", mc.Passwd)
	assert.Equal(t, "127.0.0.1:3306", mc.Addr)
	assert.Equal(t, "civicvoice", mc.DBName)
	assert.True(t, mc.ParseTime)
	assert.Equal(t, "utf8mb4", mc.Params["charset"])
}
