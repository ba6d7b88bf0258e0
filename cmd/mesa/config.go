package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hazyhaar/mesa/pkg/guest"
	"github.com/hazyhaar/mesa/pkg/session"
	"github.com/hazyhaar/mesa/pkg/source"
	"gopkg.in/yaml.v3"
)

type config struct {
	Guests      string  `yaml:"guests" env:"MESA_GUESTS"`
	Encoding    string  `yaml:"encoding" env:"MESA_ENCODING"`
	Locale      string  `yaml:"locale" env:"MESA_LOCALE"`
	Watch       bool    `yaml:"watch" env:"MESA_WATCH"`
	ExportDir   string  `yaml:"export_dir" env:"MESA_EXPORT_DIR"`
	MaxResults  int     `yaml:"max_results" env:"MESA_MAX_RESULTS"`
	LogLevel    string  `yaml:"log_level" env:"LOG_LEVEL"`
	SQLiteQuery string  `yaml:"sqlite_query" env:"MESA_SQLITE_QUERY"`
	Headers     headers `yaml:"headers"`
	Event       event   `yaml:"event"`
}

type headers struct {
	Name  []string `yaml:"name" env:"MESA_NAME_HEADERS" envSeparator:","`
	Table []string `yaml:"table" env:"MESA_TABLE_HEADERS" envSeparator:","`
}

type event struct {
	Title string `yaml:"title" env:"MESA_EVENT_TITLE"`
	Date  string `yaml:"date" env:"MESA_EVENT_DATE"`
	Venue string `yaml:"venue" env:"MESA_EVENT_VENUE"`
}

func defaultConfig() config {
	return config{
		Locale:     "es",
		Watch:      true,
		ExportDir:  ".",
		MaxResults: session.DefaultMaxResults,
		LogLevel:   "info",
		Headers: headers{
			Name:  guest.DefaultNameHeaders,
			Table: guest.DefaultTableHeaders,
		},
	}
}

// loadConfig reads the YAML file at path, if any, then applies environment
// overrides. found reports whether the file existed.
func loadConfig(path string) (cfg config, found bool, err error) {
	cfg = defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		found = true
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, found, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, false, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, found, fmt.Errorf("parse env: %w", err)
	}
	return cfg, found, nil
}

func (c config) parser() guest.Parser {
	return guest.Parser{NameHeaders: c.Headers.Name, TableHeaders: c.Headers.Table}
}

func (c config) sourceOptions() source.Options {
	return source.Options{Encoding: c.Encoding, Parser: c.parser(), SQLiteQuery: c.SQLiteQuery}
}

func (c config) sessionOptions() session.Options {
	return session.Options{
		MaxResults: c.MaxResults,
		Encoding:   c.Encoding,
		Event:      session.Event{Title: c.Event.Title, Date: c.Event.Date, Venue: c.Event.Venue},
	}
}
