package database

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: "postgres", want: "postgres"},
		{driver: "mysql", want: "mysql"},
		{driver: "sqlite", want: "sqlite"},
		{driver: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(&Config{Driver: tt.driver, Host: "localhost", Port: 1})
			if tt.wantErr {
				if err == nil {
					t.Fatal("Dialector() error = nil, want unsupported driver")
				}
				return
			}
			if err != nil {
				t.Fatalf("Dialector() error = %v", err)
			}
			if d.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.want)
			}
		})
	}
}

func TestNewSQLiteAndMigrate(t *testing.T) {
	db, err := New(&Config{
		Driver:       "sqlite",
		FilePath:     filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := AutoMigrate(db, &widget{}); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	if err := db.Create(&widget{Name: "w"}).Error; err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"error":  logger.Error,
		"info":   logger.Info,
		"":       logger.Warn,
	}
	for in, want := range tests {
		if got := logLevel(in); got != want {
			t.Errorf("logLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
