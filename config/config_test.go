package config

import (
	"os"
	"path/filepath"
	"testing"

	"emptio-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "emptio.db", cfg.DBPath)
	assert.Equal(t, 587, cfg.EmailPort)
	assert.Equal(t, "Emptio", cfg.EmailFromName)
	assert.Same(t, cfg, C)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "PORT=9090\nDB_PATH=/tmp/shop.db\nJWT_SECRET=envfile_secret\nADMIN_EMAIL=admin@emptio.test\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/shop.db", cfg.DBPath)
	assert.Equal(t, "admin@emptio.test", cfg.AdminEmail)
	assert.Equal(t, []byte("envfile_secret"), JWTSecret)
}

func TestSeedAdmin(t *testing.T) {
	require.NoError(t, InitDB(":memory:"))
	sqlDB, err := DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, SeedAdmin("admin@emptio.test", "changeme"))

	var admin models.User
	require.NoError(t, DB.Where("email = ?", "admin@emptio.test").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("changeme")))

	// seeding again must not duplicate or overwrite
	require.NoError(t, SeedAdmin("admin@emptio.test", "different"))

	var count int64
	require.NoError(t, DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// blank credentials are a no-op
	require.NoError(t, SeedAdmin("", ""))
}
