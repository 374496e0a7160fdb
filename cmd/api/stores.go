package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/config"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/database"
)

// stores is the persistence side of the process, chosen by store.driver and redis.enabled.
type stores struct {
	DB       *sqlx.DB
	Redis    *redis.Client
	History  domain.HistoryRepository
	Notifier domain.HistoryNotifier
	Users    domain.UserRepository
}

func openStores(cfg config.Application) (*stores, func(), error) {
	s := &stores{}
	var base domain.HistoryRepository

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		s.DB = db
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using sqlite store at %s", cfg.Store.Path)
		s.DB = db
	default:
		log.Warn("Using the in-memory store: history is lost on restart")
	}

	if s.DB != nil {
		base = repository.NewSQLHistoryRepository(s.DB)
		s.Users = repository.NewSQLUserRepository(s.DB)
	} else {
		base = repository.NewInMemoryHistoryRepository()
		s.Users = repository.NewInMemoryUserRepository()
	}

	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			s.close()
			return nil, nil, fmt.Errorf("redis enabled but unreachable: %w", err)
		}
		s.Redis = rdb
		base = repository.NewCachedHistoryRepository(base, rdb)
		s.Notifier = repository.NewRedisHistoryNotifier(rdb)
	} else {
		s.Notifier = repository.NewLocalNotifier()
	}

	s.History = repository.NewNotifyingHistoryRepository(base, s.Notifier)
	return s, s.close, nil
}

func (s *stores) close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warnf("closing redis: %v", err)
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Warnf("closing database: %v", err)
		}
	}
}
