package database

import (
	"time"

	"invoicing-backend/config"
	ierr "invoicing-backend/errors"
	"invoicing-backend/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the shared handle on the public schema.
var DB *gorm.DB

// gormWriter routes gorm's log lines into zap.
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(format, args...)
}

// Connect opens the Postgres pool and stores it in DB.
func Connect(cfg *config.Configuration, log *logger.Logger) error {
	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Postgres.GetDSN()), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(gormWriter{log: log.With("component", "gorm")}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return ierr.WithError(err).
			WithMessage("could not connect to database").
			Mark(ierr.ErrDatabase)
	}

	DB = db
	return nil
}
