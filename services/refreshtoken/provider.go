package refreshtoken

import (
	"github.com/caingletaouievyv/tasktracker-api/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideStore(db *gorm.DB, logger *logging.Service) Store {
	return NewGormStore(db, logger.Named("refreshtoken"))
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
)
