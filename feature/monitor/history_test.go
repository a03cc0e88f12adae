package monitor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/asdfjk123/renode/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGormHistory_SQLite(t *testing.T) {
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "history.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	h, err := NewGormHistory(db)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, h.Append(ctx, "session", fmt.Sprintf("cmd %d", i)))
	}

	recent, err := h.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd 3", "cmd 4", "cmd 5"}, recent)
}

func TestGormHistory_Append(t *testing.T) {
	db, mock := setupMockDB(t)
	h := &GormHistory{db: db}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `monitor_history`").
		WithArgs("abc", "status", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, h.Append(context.Background(), "abc", "status"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormHistory_RecentError(t *testing.T) {
	db, mock := setupMockDB(t)
	h := &GormHistory{db: db}

	mock.ExpectQuery("SELECT \\* FROM `monitor_history`").WillReturnError(errors.New("connection lost"))

	_, err := h.Recent(context.Background(), 5)
	assert.ErrorContains(t, err, "connection lost")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryHistory(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(3)

	for _, l := range []string{"a", "b", "c", "d"} {
		require.NoError(t, h.Append(ctx, "", l))
	}

	all, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, all)

	last, err := h.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, last)
}
