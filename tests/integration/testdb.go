// Package integration runs the repositories and HTTP API against a real
// PostgreSQL started with testcontainers. One container serves the whole
// package; every test starts from truncated tables.
package integration

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"github.com/lexdesk/backend/internal/infrastructure/migration"
	"github.com/lexdesk/backend/internal/infrastructure/persistence"
	"github.com/lexdesk/backend/migrations"
	"github.com/lexdesk/backend/tests/testutil"
)

// TestPassword is the password of every profile created here
const TestPassword = "correct-horse-42"

var (
	pg struct {
		once      sync.Once
		container *tcpostgres.PostgresContainer
		dsn       string
		err       error
	}
	// serializes tests that share the database
	dbLock sync.Mutex

	fake = testutil.NewFaker(0)
)

// terminatePostgres stops the shared container, if one was started
func terminatePostgres() {
	if pg.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = pg.container.Terminate(ctx)
}

func startPostgres() {
	ctx := context.Background()
	pg.container, pg.err = tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("lexdesk_test"),
		tcpostgres.WithUsername("lexdesk"),
		tcpostgres.WithPassword("lexdesk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second)),
	)
	if pg.err != nil {
		return
	}
	pg.dsn, pg.err = pg.container.ConnectionString(ctx, "sslmode=disable")
	if pg.err != nil {
		return
	}
	db, err := sql.Open("postgres", pg.dsn)
	if err != nil {
		pg.err = err
		return
	}
	defer db.Close()
	m, err := migration.New(db, migrations.FS, nil)
	if err != nil {
		pg.err = err
		return
	}
	pg.err = m.Up()
}

// TestDB is a migrated, empty database reserved for one test
type TestDB struct {
	DB *gorm.DB
	t  *testing.T
}

// NewTestDB returns the shared database with every table truncated. The
// test holds it exclusively until it ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	pg.once.Do(startPostgres)
	require.NoError(t, pg.err, "start postgres")

	dbLock.Lock()
	t.Cleanup(dbLock.Unlock)

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(pg.dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(level),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tdb := &TestDB{DB: db, t: t}
	tdb.truncate()
	return tdb
}

func (tdb *TestDB) truncate() {
	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`,
	).Scan(&tables).Error)
	if len(tables) == 0 {
		return
	}
	require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE").Error)
}

// Fixture is a firm and its owner
type Fixture struct {
	Firm  *firm.Firm
	Owner *firm.Profile
}

// CreateTestFirm stores a trial firm with an owner profile. An empty name
// gets a generated one.
func (tdb *TestDB) CreateTestFirm(name string) Fixture {
	tdb.t.Helper()
	if name == "" {
		name = fake.FirmName()
	}
	f, err := firm.NewTrialFirm(name, fake.Email(), 14)
	require.NoError(tdb.t, err)
	return Fixture{Firm: f, Owner: tdb.CreateTestProfile(f, firm.RoleOwner)}
}

// CreateTestProfile saves f, then a profile with role and TestPassword
func (tdb *TestDB) CreateTestProfile(f *firm.Firm, role firm.Role) *firm.Profile {
	tdb.t.Helper()
	ctx := context.Background()
	require.NoError(tdb.t, persistence.NewGormFirmRepository(tdb.DB).Save(ctx, f))

	hash, err := auth.NewPasswordHasher(4).Hash(TestPassword)
	require.NoError(tdb.t, err)
	p, err := firm.NewProfile(f.ID, fake.FullName(), fake.Email(), role, hash)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormProfileRepository(tdb.DB).Save(ctx, p))
	return p
}
