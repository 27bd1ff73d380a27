package database_test

import (
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/auditmarks/pkg/database"
)

func TestFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := database.Config{Name: "auditmarks", User: "auditor"}
		require.NoError(t, cfg.Finalize(nil))

		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 5432, cfg.Port)
		assert.Equal(t, "disable", cfg.SSLMode)
		assert.Equal(t, 25, cfg.MaxOpenConns)
		assert.Equal(t, 5, cfg.MaxIdleConns)
		assert.Equal(t, 15*time.Minute, cfg.ConnMaxLifetimeDuration())
		assert.Equal(t, 5*time.Second, cfg.ConnTimeoutDuration())
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "db.internal")
		t.Setenv("TEST_DB_PORT", "5433")
		t.Setenv("TEST_DB_NAME", "marks")
		t.Setenv("TEST_DB_USER", "svc")
		t.Setenv("TEST_DB_PASSWORD", "secret")
		t.Setenv("TEST_DB_MAX_OPEN", "50")
		t.Setenv("TEST_DB_TIMEOUT", "10s")

		cfg := database.Config{}
		require.NoError(t, cfg.Finalize(&database.Env{
			Host:         "TEST_DB_HOST",
			Port:         "TEST_DB_PORT",
			Name:         "TEST_DB_NAME",
			User:         "TEST_DB_USER",
			Password:     "TEST_DB_PASSWORD",
			MaxOpenConns: "TEST_DB_MAX_OPEN",
			ConnTimeout:  "TEST_DB_TIMEOUT",
		}))

		assert.Equal(t, "db.internal", cfg.Host)
		assert.Equal(t, 5433, cfg.Port)
		assert.Equal(t, "marks", cfg.Name)
		assert.Equal(t, "svc", cfg.User)
		assert.Equal(t, "secret", cfg.Password)
		assert.Equal(t, 50, cfg.MaxOpenConns)
		assert.Equal(t, 10*time.Second, cfg.ConnTimeoutDuration())
	})

	t.Run("unparseable port ignored", func(t *testing.T) {
		t.Setenv("TEST_DB_PORT", "postgres")

		cfg := database.Config{Name: "marks", User: "svc"}
		require.NoError(t, cfg.Finalize(&database.Env{Port: "TEST_DB_PORT"}))
		assert.Equal(t, 5432, cfg.Port)
	})

	invalid := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing name", database.Config{User: "svc"}, "name required"},
		{"missing user", database.Config{Name: "marks"}, "user required"},
		{"idle above open", database.Config{Name: "marks", User: "svc", MaxOpenConns: 2, MaxIdleConns: 5}, "max_idle_conns (5) cannot exceed max_open_conns (2)"},
		{"bad lifetime", database.Config{Name: "marks", User: "svc", ConnMaxLifetime: "forever"}, "invalid conn_max_lifetime"},
		{"bad timeout", database.Config{Name: "marks", User: "svc", ConnTimeout: "soon"}, "invalid conn_timeout"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.cfg.Finalize(nil), tt.wantErr)
		})
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{Host: "localhost", Port: 5432, Name: "marks", User: "svc", ConnTimeout: "5s"}
	base.Merge(&database.Config{Host: "db.internal", Password: "secret"})

	assert.Equal(t, "db.internal", base.Host)
	assert.Equal(t, 5432, base.Port)
	assert.Equal(t, "marks", base.Name)
	assert.Equal(t, "secret", base.Password)
	assert.Equal(t, "5s", base.ConnTimeout)
}

func TestDsn(t *testing.T) {
	cfg := database.Config{
		Host:     "db.internal",
		Port:     5433,
		Name:     "auditmarks",
		User:     "svc",
		Password: "p@ss/word",
		SSLMode:  "require",
	}

	u, err := url.Parse(cfg.Dsn())
	require.NoError(t, err)

	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:5433", u.Host)
	assert.Equal(t, "/auditmarks", u.Path)
	assert.Equal(t, "svc", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss/word", pw)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}

func TestNew(t *testing.T) {
	cfg := database.Config{Name: "auditmarks", User: "svc"}
	require.NoError(t, cfg.Finalize(nil))
	cfg.MaxOpenConns = 42

	sys, err := database.New(&cfg, slog.Default())
	require.NoError(t, err)

	conn := sys.Connection()
	require.NotNil(t, conn)
	defer conn.Close()

	// sql.Open does not dial, so pool settings are observable without a server
	assert.Equal(t, 42, conn.Stats().MaxOpenConnections)
}
