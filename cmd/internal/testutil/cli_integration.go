//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	mysqlImage          = "mysql:8.0.36"
	mysqlDatabase       = "skiplock"
	mysqlUser           = "root"
	mysqlPassword       = "secret"
	cliContainerImage   = "alpine:3.20"
	cliContainerPath    = "/cli"
	cliExitTimeout      = 2 * time.Minute
	mysqlStartupTimeout = 2 * time.Minute
	postgresImage       = "postgres:16-alpine"
	postgresDatabase    = "skiplock"
	postgresUser        = "skiplock"
	postgresPassword    = "secret"
)

// MySQLContainer is a MySQL 8 server attached to a private network under the alias "mysql".
// DB connects from the host; DSN is the address other containers on Network use.
type MySQLContainer struct {
	Container testcontainers.Container
	Network   *testcontainers.DockerNetwork
	DB        *sql.DB
	DSN       string
}

// StartMySQLContainer starts MySQL and skips the test when Docker is unavailable.
func StartMySQLContainer(t *testing.T, ctx context.Context) MySQLContainer {
	t.Helper()

	net := newNetwork(t, ctx)

	port := nat.Port("3306/tcp")
	req := testcontainers.ContainerRequest{
		Image:        mysqlImage,
		ExposedPorts: []string{string(port)},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      mysqlDatabase,
		},
		Networks: []string{net.Name},
		NetworkAliases: map[string][]string{
			net.Name: {"mysql"},
		},
		WaitingFor: wait.ForSQL(port, "mysql", func(host string, port nat.Port) string {
			return mysqlDSN(host, port.Port())
		}).WithStartupTimeout(mysqlStartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("start mysql container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("resolve port: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN(host, mappedPort.Port()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return MySQLContainer{
		Container: container,
		Network:   net,
		DB:        db,
		DSN:       mysqlDSN("mysql", "3306"),
	}
}

func mysqlDSN(host, port string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", mysqlUser, mysqlPassword, host, port, mysqlDatabase)
}

// PostgresContainer is a PostgreSQL server attached to a private network under the alias "postgres".
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	Network   *testcontainers.DockerNetwork
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresContainer starts PostgreSQL and skips the test when Docker is unavailable.
func StartPostgresContainer(t *testing.T, ctx context.Context) PostgresContainer {
	t.Helper()

	net := newNetwork(t, ctx)

	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase(postgresDatabase),
		tcpostgres.WithUsername(postgresUser),
		tcpostgres.WithPassword(postgresPassword),
		tcpostgres.BasicWaitStrategies(),
		network.WithNetwork([]string{"postgres"}, net),
	)
	if err != nil {
		t.Skipf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("resolve connection string: %v", err)
	}
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	containerDSN := fmt.Sprintf(
		"postgres://%s:%s@postgres:5432/%s?sslmode=disable",
		postgresUser,
		postgresPassword,
		postgresDatabase,
	)

	return PostgresContainer{
		Container: container,
		Network:   net,
		Pool:      pool,
		DSN:       containerDSN,
	}
}

func newNetwork(t *testing.T, ctx context.Context) *testcontainers.DockerNetwork {
	t.Helper()

	net, err := network.New(ctx)
	if err != nil {
		t.Skipf("create network: %v", err)
	}
	t.Cleanup(func() {
		_ = net.Remove(ctx)
	})

	return net
}

// BuildBinary cross-compiles pkg for linux so it can run inside the CLI container.
func BuildBinary(t *testing.T, pkg string) string {
	t.Helper()

	name := filepath.Base(pkg)
	if name == "." {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatalf("resolve working dir: %v", err)
		}
		name = filepath.Base(wd)
	}
	bin := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", bin, pkg)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=0",
		"GOOS=linux",
		"GOARCH="+runtime.GOARCH,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build %s: %v\n%s", pkg, err, string(out))
	}

	return bin
}

// RunCLIContainer runs binaryPath with args and env inside an alpine container on networkName
// and returns its exit code and combined output.
func RunCLIContainer(t *testing.T, ctx context.Context, networkName, binaryPath string, args []string, env map[string]string) (int, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:      cliContainerImage,
		Entrypoint: []string{cliContainerPath},
		Cmd:        args,
		Env:        env,
		Networks:   []string{networkName},
		Files: []testcontainers.ContainerFile{
			{
				HostFilePath:      binaryPath,
				ContainerFilePath: cliContainerPath,
				FileMode:          0o755,
			},
		},
		WaitingFor: wait.ForExit().WithExitTimeout(cliExitTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start cli container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	logsReader, err := container.Logs(ctx)
	if err != nil {
		t.Fatalf("read cli logs: %v", err)
	}
	defer logsReader.Close()

	logs, err := io.ReadAll(logsReader)
	if err != nil {
		t.Fatalf("read cli logs: %v", err)
	}

	state, err := container.State(ctx)
	if err != nil {
		t.Fatalf("read cli state: %v", err)
	}

	return state.ExitCode, string(logs)
}
