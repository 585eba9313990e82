package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DefaultViewName       = "vw_AllSurveyData"
	DefaultCheckpointPath = "data/survey_data_last_checkpoint.txt"
	DefaultLogFile        = "data/surveyview.log"
	DefaultConfigFile     = "config.toml"
	DefaultEnvFile        = ".env"
	DefaultPort           = 3318
)

type Config struct {
	DatabaseURL    string
	DatabaseType   string
	ViewName       string
	CheckpointPath string
	ConfigFile     string
	EnvFile        string
	LogFile        string
	LogLevel       string
	Port           int
	AdminKeySalt   string
}

// fileConfig mirrors config.toml
type fileConfig struct {
	DBConnection struct {
		Type string `toml:"type"`
		URL  string `toml:"url"`
	} `toml:"db_connection"`
	View struct {
		Name       string `toml:"name"`
		Checkpoint string `toml:"checkpoint"`
	} `toml:"view"`
	Log struct {
		File  string `toml:"file"`
		Level string `toml:"level"`
	} `toml:"log"`
	Server struct {
		Port         int    `toml:"port"`
		AdminKeySalt string `toml:"admin_key_salt"`
	} `toml:"server"`
}

// AddFlags registers every configuration flag on flags
func AddFlags(flags *pflag.FlagSet, cfg *Config) {
	// Database (can be CLI args, env or config file)
	flags.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL (postgres://... or a sqlite file path)")
	flags.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type (postgres or sqlite)")

	// View reconciliation
	flags.StringVar(&cfg.ViewName, "view", "", "Name of the all-survey-data view")
	flags.StringVar(&cfg.CheckpointPath, "checkpoint", "", "Checkpoint file path")

	// Files
	flags.StringVarP(&cfg.ConfigFile, "config", "c", "", "TOML config file")
	flags.StringVar(&cfg.EnvFile, "env-file", "", "dotenv file loaded before reading env variables")
	flags.StringVar(&cfg.LogFile, "log-file", "", "Log file (- for stderr)")
	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Server
	flags.IntVarP(&cfg.Port, "port", "p", 0, "HTTP port for serve")
	flags.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt for serve (prefer env)")
}

// ParseFlags parses args and resolves every setting
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	flags := pflag.NewFlagSet("surveyview", pflag.ContinueOnError)
	AddFlags(flags, &cfg)

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := Resolve(flags, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve fills settings not given on the command line.
// Precedence: flags, then environment (including the dotenv file), then the
// TOML config file, then defaults.
func Resolve(flags *pflag.FlagSet, cfg *Config) error {
	// dotenv never overrides variables already set in the environment
	if cfg.EnvFile == "" {
		cfg.EnvFile = DefaultEnvFile
	}
	if err := godotenv.Load(cfg.EnvFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("env-file") {
			return fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
		}
	}

	explicitConfig := flags.Changed("config")
	if cfg.ConfigFile == "" {
		if v := os.Getenv("SURVEYVIEW_CONFIG"); v != "" {
			cfg.ConfigFile = v
			explicitConfig = true
		} else {
			cfg.ConfigFile = DefaultConfigFile
		}
	}

	var file fileConfig
	if _, err := toml.DecodeFile(cfg.ConfigFile, &file); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicitConfig {
			return fmt.Errorf("failed to read config file %s: %w", cfg.ConfigFile, err)
		}
	}

	pick := func(flagName string, dst *string, envKey, fileVal, def string) {
		if flags.Changed(flagName) && *dst != "" {
			return
		}
		switch {
		case os.Getenv(envKey) != "":
			*dst = os.Getenv(envKey)
		case fileVal != "":
			*dst = fileVal
		default:
			*dst = def
		}
	}

	pick("database-url", &cfg.DatabaseURL, "DATABASE_URL", file.DBConnection.URL, "")
	pick("database-type", &cfg.DatabaseType, "DATABASE_TYPE", file.DBConnection.Type, "")
	pick("view", &cfg.ViewName, "VIEW_NAME", file.View.Name, DefaultViewName)
	pick("checkpoint", &cfg.CheckpointPath, "CHECKPOINT_PATH", file.View.Checkpoint, DefaultCheckpointPath)
	pick("log-file", &cfg.LogFile, "LOG_FILE", file.Log.File, DefaultLogFile)
	pick("log-level", &cfg.LogLevel, "LOG_LEVEL", file.Log.Level, "info")
	pick("admin-salt", &cfg.AdminKeySalt, "ADMIN_KEY_SALT", file.Server.AdminKeySalt, "")

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else if file.Server.Port != 0 {
			cfg.Port = file.Server.Port
		} else {
			cfg.Port = DefaultPort // default
		}
	}

	if cfg.DatabaseURL == "" {
		return errors.New("database URL required (use -d, DATABASE_URL env or [db_connection] url in config.toml)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = inferDatabaseType(cfg.DatabaseURL)
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	if cfg.DatabaseType != "postgres" && cfg.DatabaseType != "sqlite" {
		return fmt.Errorf("unsupported database type %q (use postgres or sqlite)", cfg.DatabaseType)
	}

	return nil
}

// inferDatabaseType treats postgres URLs as postgres and anything else as a sqlite file
func inferDatabaseType(url string) string {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}
