package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"garderie_backend/internals/configs"
)

var DB *gorm.DB

// Options shared by every connection (server, CLI, tests).
func GormConfig(log *zap.Logger, level gormLogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: configs.NewGormLogger(log, level),
		// duplicate-key errors surface as gorm.ErrDuplicatedKey
		TranslateError: true,
		// entities reference each other by id only
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func ConnectDB(cfg *configs.Config, log *zap.Logger) (*gorm.DB, error) {
	log.Info("🔌 connecting to PostgreSQL", zap.String("host", cfg.DB.Host), zap.String("db", cfg.DB.Name))

	level := gormLogger.Warn
	if !cfg.IsProduction() {
		level = gormLogger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DB.DSN("garderie"),
		PreferSimpleProtocol: true,
	}), GormConfig(log, level))
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	DB = db
	log.Info("✅ DB connected")
	return db, nil
}

func TunePool(db *gorm.DB, cfg *configs.Config, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("pool tune err", zap.Error(err))
		return
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries(db *gorm.DB, log *zap.Logger) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := Ping(ctx, db); err != nil {
			log.Warn("warm-up ping err", zap.Error(err))
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
