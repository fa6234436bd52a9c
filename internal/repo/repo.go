package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"roomrent/internal/apperr"
)

// isDupKey 不依赖 gorm.ErrDuplicatedKey，避免驱动差异
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "unique failed") ||
		strings.Contains(msg, "duplicate key")
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// internalErr 底层错误统一包装，驱动细节不出仓储层
func internalErr(op string, err error) error { return apperr.Internal(op, err) }
