package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "KANSO_"

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Application struct {
	App      App      `koanf:"app"`
	HTTP     HTTP     `koanf:"http"`
	Store    Store    `koanf:"store"`
	Database Database `koanf:"db"`
	Redis    Redis    `koanf:"redis"`
	JWT      JWT      `koanf:"jwt"`
	Persist  Persist  `koanf:"persist"`
	Session  Session  `koanf:"session"`
	Log      Log      `koanf:"log"`
}

type App struct {
	// Timezone decides which calendar day is "today" for users without their own zone.
	Timezone string `koanf:"timezone"`
}

type HTTP struct {
	Port int `koanf:"port"`
	// RateLimit applies per signed-in user, AuthRateLimit per client address on /auth.
	RateLimit     int           `koanf:"ratelimit"`
	AuthRateLimit int           `koanf:"authratelimit"`
	RateWindow    time.Duration `koanf:"ratewindow"`
}

type Store struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

type Database struct {
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
	User    string `koanf:"user"`
	Pass    string `koanf:"pass"`
	Name    string `koanf:"name"`
	SSLMode string `koanf:"sslmode"`
}

type Redis struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    string `koanf:"port"`
	Pass    string `koanf:"pass"`
	DB      int    `koanf:"db"`
}

type JWT struct {
	Secret   string        `koanf:"secret"`
	Issuer   string        `koanf:"issuer"`
	Duration time.Duration `koanf:"duration"`
}

type Persist struct {
	QueueSize int `koanf:"queuesize"`
}

// Session bounds how long an unused tracker session stays in memory.
type Session struct {
	IdleTimeout   time.Duration `koanf:"idletimeout"`
	SweepInterval time.Duration `koanf:"sweepinterval"`
}

type Log struct {
	Level string `koanf:"level"`
}

func Defaults() Application {
	return Application{
		App: App{
			Timezone: "Local",
		},
		HTTP: HTTP{
			Port:          8080,
			RateLimit:     100,
			AuthRateLimit: 20,
			RateWindow:    time.Minute,
		},
		Store: Store{
			Driver: DriverMemory,
			Path:   "kanso.db",
		},
		Database: Database{
			Host:    "localhost",
			Port:    5432,
			User:    "kanso",
			Name:    "kanso",
			SSLMode: "disable",
		},
		Redis: Redis{
			Host: "localhost",
			Port: "6379",
		},
		JWT: JWT{
			Issuer:   "kanso-growth-tracker",
			Duration: 24 * time.Hour,
		},
		Persist: Persist{
			QueueSize: 100,
		},
		Session: Session{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load merges defaults, the optional YAML file at path and KANSO_ environment variables, in that order.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Infof("Config file not found at %s, using defaults and environment variables", path)
			} else {
				log.Errorf("error loading config from YAML: %v", err)
				return Application{}, err
			}
		} else {
			log.Infof("Loaded configuration from file: %s", path)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	if err := app.Validate(); err != nil {
		return Application{}, err
	}

	return app, nil
}

func (a Application) Validate() error {
	switch a.Store.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown store driver %q (must be memory, sqlite, or postgres)", a.Store.Driver)
	}

	if _, err := a.Location(); err != nil {
		return err
	}

	if a.Session.IdleTimeout <= 0 || a.Session.SweepInterval <= 0 {
		return errors.New("config: session.idletimeout and session.sweepinterval must be positive")
	}
	if a.Persist.QueueSize <= 0 {
		return fmt.Errorf("config: persist.queuesize must be positive, got %d", a.Persist.QueueSize)
	}

	return nil
}

// Location resolves app.timezone. "Local" and an empty value mean the host zone.
func (a Application) Location() (*time.Location, error) {
	if a.App.Timezone == "" || a.App.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid app.timezone %q: %w", a.App.Timezone, err)
	}
	return loc, nil
}

func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, url.QueryEscape(d.Pass), d.Host, d.Port, d.Name, d.SSLMode)
}
