//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestScorecardWithMySQL tracks bulk runs in a MySQL backend.
func TestScorecardWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "scorecard",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/scorecard?parseTime=true", host, port.Port())
	exerciseRunStore(t, []string{
		"SCORECARD_BACKEND=mysql",
		"SCORECARD_DB_CONNECT=" + connStr,
	})
}

// TestScorecardWithPostgres tracks bulk runs in a PostgreSQL backend.
func TestScorecardWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseRunStore(t, []string{
		"SCORECARD_BACKEND=postgresql",
		"SCORECARD_DB_CONNECT=" + connStr,
	})
}

// exerciseRunStore walks the run lifecycle: migrate, track two batches,
// report status, export and clear.
func exerciseRunStore(t *testing.T, env []string) {
	t.Helper()

	_, err := runScorecard(t, env, "runs", "clear")
	require.NoError(t, err)

	_, err = runScorecard(t, env, "runs", "migrate")
	require.NoError(t, err)

	for range 2 {
		_, err = runScorecard(t, env, "bulk", retailCard, applicantsFile, "--output", "json")
		require.NoError(t, err)
	}

	out, err := runScorecard(t, env, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, string(out), "retail")

	exportPrefix := filepath.Join(t.TempDir(), "runs")
	_, err = runScorecard(t, env, "runs", "export", "--output-file", exportPrefix)
	require.NoError(t, err)
	for _, suffix := range []string{".runs.parquet", ".results.parquet"} {
		info, err := os.Stat(exportPrefix + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err = runScorecard(t, env, "runs", "clear")
	require.NoError(t, err)
}
