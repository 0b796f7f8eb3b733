package database

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppDirName       = ".road-trip-planner"
	SQLiteDBFileName = "data.db"
	ExportDirName    = "trips"
)

// GetAppDir returns ~/.road-trip-planner, creating it if needed
func GetAppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	appDir := filepath.Join(homeDir, AppDirName)
	if err := os.MkdirAll(appDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create app directory: %w", err)
	}

	return appDir, nil
}

// GetDefaultDBPath returns the default SQLite database path: ~/.road-trip-planner/data.db
func GetDefaultDBPath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, SQLiteDBFileName), nil
}

// GetDefaultExportDir returns ~/.road-trip-planner/trips, creating it if needed
func GetDefaultExportDir() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}

	exportDir := filepath.Join(appDir, ExportDirName)
	if err := os.MkdirAll(exportDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	return exportDir, nil
}
