package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// cliConfig is the optional ini file surface. Flags override file values.
type cliConfig struct {
	LogLevel  string
	LogFormat string
	LogPath   string
	MaxRows   int
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tablekit.ini")
}

// loadCLIConfig reads the ini file at path, or the default location when
// path is empty. A missing default file is not an error; a missing explicit
// file is.
func loadCLIConfig(path string) (*cliConfig, error) {
	cfg := &cliConfig{LogLevel: "INFO", LogFormat: "text"}

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		if !explicit && os.IsNotExist(errors.Cause(err)) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	logSec := file.Section("logging")
	cfg.LogLevel = logSec.Key("level").MustString(cfg.LogLevel)
	cfg.LogFormat = logSec.Key("format").MustString(cfg.LogFormat)
	cfg.LogPath = logSec.Key("path").String()

	outSec := file.Section("output")
	cfg.MaxRows = outSec.Key("max_rows").MustInt(0)
	return cfg, nil
}
