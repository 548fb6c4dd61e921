package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/repo"
)

// isNotFound normalizes "record not found" checks across layers.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate detects unique-constraint violations by message.
func isDuplicate(err error) bool {
	if errors.Is(err, repo.ErrDuplicate) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
