package persistence

import (
	"errors"

	"github.com/comfund/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps gorm errors onto domain sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.ErrNotFound
	}
	return err
}
