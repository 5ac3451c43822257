package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_LocalDefaults(t *testing.T) {
	os.Clearenv()
	t.Setenv("APP_ENV", "local")
	t.Setenv("DATABASE_URL", "root:root@tcp(localhost:3306)/inventory")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvLocal, cfg.AppEnv)
	require.Equal(t, "127.0.0.1:50051", cfg.GRPCAddr)
	require.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	require.Equal(t, "127.0.0.1:3001", cfg.AuthAddr)
	require.Equal(t, "127.0.0.1:3002", cfg.FSAddr)
	require.Equal(t, DriverMySQL, cfg.StoreDriver)
	require.Equal(t, 10*time.Second, cfg.CollaboratorTimeout)
	require.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	require.False(t, cfg.EnableGRPCReflection)
}

func TestLoad_DockerDefaults(t *testing.T) {
	os.Clearenv()
	t.Setenv("APP_ENV", "docker")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDocker, cfg.AppEnv)
	require.Equal(t, "0.0.0.0:50051", cfg.GRPCAddr)
	require.Equal(t, "auth", cfg.AuthAddr)
	require.Equal(t, "fs", cfg.FSAddr)
	require.Equal(t, "redis:6379", cfg.RedisAddr)
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	os.Clearenv()
	t.Setenv("APP_ENV", "docker")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_ADDR", "auth.internal:9000")
	t.Setenv("ENABLE_GRPC_REFLECTION", "true")
	t.Setenv("COLLABORATOR_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "auth.internal:9000", cfg.AuthAddr)
	require.True(t, cfg.EnableGRPCReflection)
	require.Equal(t, 3*time.Second, cfg.CollaboratorTimeout)
}

func TestLoad_DatabaseURLFile(t *testing.T) {
	os.Clearenv()
	secret := filepath.Join(t.TempDir(), "DATABASE_URL")
	require.NoError(t, os.WriteFile(secret, []byte("postgres://u:p@db:5432/inventory\n"), 0o600))

	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://ignored")
	t.Setenv("DATABASE_URL_FILE", secret)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@db:5432/inventory", cfg.DatabaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown app env", env: map[string]string{"APP_ENV": "prod", "STORE_DRIVER": "memory"}},
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "sql driver without url", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "non-positive timeout", env: map[string]string{"STORE_DRIVER": "memory", "SHUTDOWN_TIMEOUT": "0s"}},
		{name: "missing secret file", env: map[string]string{"STORE_DRIVER": "mysql", "DATABASE_URL_FILE": "/nonexistent/secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestMaskURL(t *testing.T) {
	require.Equal(t, "postgres://user:xxxxx@db:5432/inventory", maskURL("postgres://user:secret@db:5432/inventory"))
	require.Equal(t, "root:***@tcp(localhost:3306)/inventory", maskURL("root:root@tcp(localhost:3306)/inventory"))
	require.Equal(t, "mongodb://db:27017", maskURL("mongodb://db:27017"))
	require.Equal(t, "", maskURL(""))
}
