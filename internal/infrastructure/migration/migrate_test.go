package migration

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"

	"timekeeper/internal/app/server/config"
)

type fakeMigrator struct {
	upErr    error
	srcErr   error
	dbErr    error
	upCalled bool
}

func (f *fakeMigrator) Up() error {
	f.upCalled = true
	return f.upErr
}

func (f *fakeMigrator) Close() (error, error) {
	return f.srcErr, f.dbErr
}

func testConfig() *config.Config {
	return &config.Config{}
}

func TestMigration_Up(t *testing.T) {
	tests := []struct {
		name     string
		migrator *fakeMigrator
		wantErr  bool
	}{
		{name: "успех", migrator: &fakeMigrator{}},
		{name: "нет новых миграций", migrator: &fakeMigrator{upErr: migrate.ErrNoChange}},
		{name: "ошибка применения", migrator: &fakeMigrator{upErr: errors.New("dirty database")}, wantErr: true},
		{name: "ошибка закрытия источника", migrator: &fakeMigrator{srcErr: errors.New("source close")}, wantErr: true},
		{name: "ошибка закрытия базы", migrator: &fakeMigrator{dbErr: errors.New("db close")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := func(source, db string) (Migrator, error) {
				return tt.migrator, nil
			}

			err := NewMigration(testConfig(), engine).Up()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, tt.migrator.upCalled)
		})
	}
}

func TestMigration_Up_EngineError(t *testing.T) {
	engine := func(source, db string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	err := NewMigration(testConfig(), engine).Up()

	assert.ErrorContains(t, err, "engine crash")
}
