//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// exerciseBackend runs the cache and run history commands against one database.
// The two connection strings must differ even when they reach the same server.
func exerciseBackend(t *testing.T, backend, cacheConn, runsConn string) {
	t.Helper()
	env := []string{
		"HOTREPORT_CACHE_BACKEND=" + backend,
		"HOTREPORT_CACHE_DB_CONNECT=" + cacheConn,
		"HOTREPORT_RUNS_BACKEND=" + backend,
		"HOTREPORT_RUNS_DB_CONNECT=" + runsConn,
	}
	root := ".." // project root is a git repository

	_, err := runHotreport(t, root, env, "cache", "clear")
	require.NoError(t, err)

	_, err = runHotreport(t, root, env, "runs", "clear")
	require.NoError(t, err)

	out, err := runHotreport(t, root, env, "runs", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "version 2")

	_, err = runHotreport(t, root, env, "report", "--limit", "5", "--output", "json")
	require.NoError(t, err)

	// Second run is served from the activity cache.
	_, err = runHotreport(t, root, env, "report", "--limit", "5", "--output", "json")
	require.NoError(t, err)

	out, err = runHotreport(t, root, env, "cache", "status")
	require.NoError(t, err)
	assert.NotContains(t, out, "Total Entries: 0")

	out, err = runHotreport(t, root, env, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "Total File Scores: 10")

	outBase := t.TempDir() + "/history"
	_, err = runHotreport(t, root, env, "runs", "export", "--output-file", outBase)
	require.NoError(t, err)
	assert.FileExists(t, outBase+".runs.parquet")
}

// TestHotreportWithMySQL tests the hotreport CLI with a MySQL backend.
func TestHotreportWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "hotreport",
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

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/hotreport?parseTime=true", host, port.Port())
	exerciseBackend(t, "mysql", connStr, connStr+"&loc=UTC")
}

// TestHotreportWithPostgres tests the hotreport CLI with a PostgreSQL backend.
func TestHotreportWithPostgres(t *testing.T) {
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

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	exerciseBackend(t, "postgresql", connStr, connStr+" application_name=hotreport-runs")
}
