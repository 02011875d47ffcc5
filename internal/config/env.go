package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env is the process level configuration.
type Env struct {
	DataDir    string `env:"PHASESIM_DATA" envDefault:"runs"`
	LogLevel   string `env:"PHASESIM_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"PHASESIM_LOG_FORMAT" envDefault:"text"`
	NoProgress bool   `env:"PHASESIM_NO_PROGRESS"`
}

// LoadEnv reads optional dotenv files into the environment, then parses
// Env from it. Missing dotenv files are skipped; variables already set win.
func LoadEnv(files ...string) (Env, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Level converts LogLevel to a slog level.
func (e Env) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", e.LogLevel, err)
	}
	return lvl, nil
}

// JSONLogs reports whether logs should be written as JSON.
func (e Env) JSONLogs() bool {
	return strings.EqualFold(e.LogFormat, "json")
}
