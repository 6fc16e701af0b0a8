// Package testutil provides shared utilities for testing.
package testutil

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/docstore"
)

// SetupTestDB creates an in-memory SQLite database with migrations applied.
// Returns the DB wrapper and Repository. Automatically cleans up on test completion.
func SetupTestDB(t *testing.T) (*database.DB, *database.Repository) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory database")

	// a second pooled connection would open a second, empty database
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := database.NewDBFromGorm(gormDB)
	require.NoError(t, db.Migrate(), "Failed to run migrations")

	repo := database.NewRepository(db)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db, repo
}

// SetupTestDocStore starts a miniredis server and returns a document store on it.
func SetupTestDocStore(t *testing.T) (*docstore.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return docstore.New(client), mr
}

// Backend names a store constructor for tests that run against both implementations.
type Backend struct {
	Name  string
	Setup func(t *testing.T) database.Store
}

// Backends returns the relational and document store setups.
func Backends() []Backend {
	return []Backend{
		{Name: "sqlite", Setup: func(t *testing.T) database.Store {
			_, repo := SetupTestDB(t)
			return repo
		}},
		{Name: "redis", Setup: func(t *testing.T) database.Store {
			store, _ := SetupTestDocStore(t)
			return store
		}},
	}
}

// MustCreatePerson inserts a person with the given name and fails the test on error.
func MustCreatePerson(t *testing.T, store database.Store, name string) *database.Person {
	t.Helper()
	p := &database.Person{Name: name}
	require.NoError(t, store.CreatePerson(context.Background(), p))
	return p
}

// SetupTestGin creates a test Gin engine with test mode enabled.
func SetupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
