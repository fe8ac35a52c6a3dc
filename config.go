package main

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	SaveDirectory string
	FPS           float64
	EmitMult      float64
	MaxLive       int
	Emitter       bool
	Grid          bool
	Debug         bool
	LogLevel      slog.Level
	MetricsAddr   string
}

func defaultConfig() *Config {
	return &Config{
		FPS:      defaultFPS,
		EmitMult: 1,
		Grid:     true,
		LogLevel: slog.LevelInfo,
	}
}

func loadConfig() *Config {
	config := defaultConfig()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config
	}

	file, err := os.Open(filepath.Join(homeDir, rcFile))
	if err != nil {
		return config
	}
	defer file.Close()

	parseConfig(file, homeDir, config)
	return config
}

// parseConfig applies key=value lines from r to config. Unknown keys and
// unparsable values are ignored.
func parseConfig(r io.Reader, homeDir string, config *Config) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "savedirectory", "save_directory", "savedir":
			if strings.HasPrefix(value, "~") {
				value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
			}
			if !filepath.IsAbs(value) {
				if absPath, err := filepath.Abs(value); err == nil {
					value = absPath
				}
			}
			config.SaveDirectory = value
		case "fps":
			if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
				config.FPS = v
			}
		case "emitmult", "emit_mult":
			if v, err := strconv.ParseFloat(value, 64); err == nil && v >= 0 {
				config.EmitMult = v
			}
		case "maxlive", "max_live_sparks":
			if v, err := strconv.Atoi(value); err == nil && v >= 0 {
				config.MaxLive = v
			}
		case "emitter", "random_spark_starts":
			config.Emitter = strings.ToLower(value) == "true"
		case "grid":
			config.Grid = strings.ToLower(value) == "true"
		case "debug":
			config.Debug = strings.ToLower(value) == "true"
		case "loglevel", "log_level":
			var level slog.Level
			if err := level.UnmarshalText([]byte(value)); err == nil {
				config.LogLevel = level
			}
		case "metricsaddr", "metrics_addr":
			config.MetricsAddr = value
		}
	}
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
