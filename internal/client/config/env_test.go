package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubDotenv(t *testing.T, err error) {
	t.Helper()
	orig := loadDotenv
	loadDotenv = func(...string) error { return err }
	t.Cleanup(func() { loadDotenv = orig })
}

func Test_parseEnv_Variables(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	stubDotenv(t, nil)
	t.Setenv("CONNECTHUB_BACKEND_URL", "https://env.example")
	t.Setenv("CONNECTHUB_ANON_KEY", "anon")
	t.Setenv("CONNECTHUB_DATABASE_DSN", "")
	t.Setenv("CONNECTHUB_S3_ACCESS_KEY", "ak")
	t.Setenv("CONNECTHUB_S3_SECRET_KEY", "sk")

	cfg := &Config{DatabaseDSN: "keep"}
	parseEnv(cfg)

	assert.Equal(t, "https://env.example", cfg.BackendURL)
	assert.Equal(t, "anon", cfg.AnonKey)
	assert.Equal(t, "keep", cfg.DatabaseDSN, "empty variables are ignored")
	assert.Equal(t, "ak", cfg.S3AccessKey)
	assert.Equal(t, "sk", cfg.S3SecretKey)
}

func Test_parseEnv_MissingFileIgnored(t *testing.T) {
	stubDotenv(t, &fs.PathError{Op: "open", Path: ".env", Err: fs.ErrNotExist})
	require.NotPanics(t, func() { parseEnv(&Config{}) })
}

func Test_parseEnv_UnreadableFilePanics(t *testing.T) {
	stubDotenv(t, errors.New("bad line"))
	require.Panics(t, func() { parseEnv(&Config{}) })
}

func Test_parseEnv_LoadsDotenvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CONNECTHUB_AVATAR_BUCKET=pics\n"), 0o600))
	os.Args = []string{"testbin", "-env", path}

	t.Setenv("CONNECTHUB_AVATAR_BUCKET", "")
	require.NoError(t, os.Unsetenv("CONNECTHUB_AVATAR_BUCKET"))

	cfg := &Config{AvatarBucket: "avatars"}
	parseEnv(cfg)

	assert.Equal(t, "pics", cfg.AvatarBucket)
}
