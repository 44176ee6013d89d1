package migration

import (
	authdomain "github.com/altibbe/hedamo/internal/auth/domain"
	"github.com/altibbe/hedamo/internal/config"
	productdomain "github.com/altibbe/hedamo/internal/product/domain"
	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	reportdomain "github.com/altibbe/hedamo/internal/report/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

// Run picks the migration strategy per dialect: versioned SQL on postgres,
// AutoMigrate elsewhere (sqlite and mysql are dev/test conveniences).
func Run(conn *gorm.DB, cfg config.Config) error {
	if cfg.DBType == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}

	return conn.AutoMigrate(
		&authdomain.User{},
		&productdomain.Product{},
		&questiondomain.Question{},
		&questiondomain.Answer{},
		&reportdomain.Report{},
	)
}
