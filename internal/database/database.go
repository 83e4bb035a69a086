package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"surveyhub/config"
	logg "surveyhub/internal/logger"

	"github.com/valkey-io/valkey-go"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type CacheClient valkey.Client

type Cache struct {
	General   CacheClient
	Session   CacheClient
	Response  CacheClient
	Analytics CacheClient
	Events    CacheClient
}

type DB struct {
	SQL   *gorm.DB
	Cache Cache
	log   logg.Logger
}

func New(config config.Config) (DB, error) {
	log := logg.New("database").Function("New")

	log.Info("Initializing database")
	db := &DB{log: log}

	err := db.initializeDB(config)
	if err != nil {
		return DB{}, log.Err("failed to initialize database", err)
	}

	err = db.initializeCacheDB(config)
	if err != nil {
		return DB{}, log.Err("failed to initialize cache database", err)
	}

	return *db, nil
}

func (s *DB) initializeDB(config config.Config) error {
	gormLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo),
		logger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  false,
		},
	)

	gormConfig := &gorm.Config{
		Logger:                                   gormLogger,
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		CreateBatchSize:                          100,
	}

	if config.DatabaseDriver == "postgres" {
		return s.initializePostgresDB(gormConfig, config)
	}
	return s.initializeSQLiteDB(gormConfig, config)
}

func (s *DB) initializeSQLiteDB(gormConfig *gorm.Config, config config.Config) error {
	log := s.log.Function("initializeSQLiteDB")

	dbPath := config.DatabaseDbPath
	if dbPath == "" {
		return log.Error("database path is empty", "dbPath", dbPath)
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		log.Info("Creating database directory", "dir", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return log.Err("failed to create database directory", err, "dir", dir)
		}
	}

	log.Info("Connecting with GORM", "dbPath", dbPath)
	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return log.Err("failed to open database with GORM", err)
	}

	return s.finishConnect(db)
}

func (s *DB) initializePostgresDB(gormConfig *gorm.Config, config config.Config) error {
	log := s.log.Function("initializePostgresDB")

	dsn := config.DatabasePostgresDSN
	if dsn == "" {
		return log.Error("postgres DSN is empty")
	}

	log.Info("Connecting with GORM", "driver", "postgres")
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return log.Err("failed to open database with GORM", err)
	}

	return s.finishConnect(db)
}

func (s *DB) finishConnect(db *gorm.DB) error {
	log := s.log.Function("finishConnect")

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return log.Err("failed to ping database through GORM", err)
	}

	log.Info("Successfully connected with GORM")
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s.SQL = db

	return nil
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")

	if config.DatabaseCacheAddress == "" || config.DatabaseCachePort == 0 {
		return log.ErrMsg("cache address or port is empty")
	}

	address := fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort)

	caches := []struct {
		client *CacheClient
		db     int
		name   string
	}{
		{&s.Cache.General, 0, "General"},
		{&s.Cache.Session, 1, "Session"},
		{&s.Cache.Response, 2, "Response"},
		{&s.Cache.Analytics, 3, "Analytics"},
		{&s.Cache.Events, 4, "Events"},
	}

	for _, cache := range caches {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{address},
			SelectDB:    cache.db,
		})
		if err != nil {
			return log.Err("failed to create cache client", err, "cache", cache.name)
		}
		*cache.client = client
	}

	log.Info("Successfully connected cache databases")
	return nil
}

func (s *DB) Close() (err error) {
	if s.SQL != nil {
		sqlDB, err := s.SQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				_ = s.log.Err("failed to close database", err)
			}
		}
	}

	for _, client := range []CacheClient{
		s.Cache.General,
		s.Cache.Session,
		s.Cache.Response,
		s.Cache.Analytics,
		s.Cache.Events,
	} {
		if client != nil {
			client.Close()
		}
	}

	return
}

func (s *DB) SQLWithContext(ctx context.Context) *gorm.DB {
	return s.SQL.WithContext(ctx)
}

func (s *DB) FlushAllCaches() error {
	log := s.log.Function("FlushAllCaches")
	log.Info("Flushing all cache databases")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cacheClients := []struct {
		client CacheClient
		name   string
	}{
		{s.Cache.General, "General"},
		{s.Cache.Session, "Session"},
		{s.Cache.Response, "Response"},
		{s.Cache.Analytics, "Analytics"},
		{s.Cache.Events, "Events"},
	}

	for _, cache := range cacheClients {
		if cache.client != nil {
			if err := cache.client.Do(ctx, cache.client.B().Flushdb().Build()).Error(); err != nil {
				log.Er("Failed to flush cache database", err, "cache", cache.name)
				return err
			}
			log.Info("Successfully flushed cache database", "cache", cache.name)
		}
	}

	log.Info("All cache databases flushed successfully")
	return nil
}
