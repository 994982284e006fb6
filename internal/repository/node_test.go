package repository

import (
	"context"
	"path/filepath"
	"testing"

	"cyberlab/pkg/log"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// The cursor write must hit only the storage_cursor column so it can run
// outside the deployment transaction without touching admin fields.
func TestUpdateStorageCursorStatement(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	conf := viper.New()
	conf.Set("log.log_level", "error")
	conf.Set("log.encoding", "console")
	conf.Set("log.log_file_name", filepath.Join(t.TempDir(), "test.log"))
	repo := NewRepository(log.NewLog(conf), db, nil)
	nodes := NewNodeRepository(repo)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `node_config` SET `storage_cursor`=\\? WHERE id = \\?").
		WithArgs(int64(4), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, nodes.UpdateStorageCursor(context.Background(), 1, 4))
	require.NoError(t, mock.ExpectationsWereMet())
}
