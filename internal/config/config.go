// Package config assembles the service configuration from, in increasing
// priority: built-in defaults, an optional JSON config file, environment
// variables, and command line flags.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR" validate:"filepath"`
	StaticDir           string        `env:"STATIC_DIR" validate:"filepath"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	DBFileName:          "",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	MigrationsDir:       "cmd/tracker/migrations",
	StaticDir:           "web/static",
}

// jsonConfig mirrors Config for the optional JSON config file.
type jsonConfig struct {
	RunAddr             *string `json:"server_address"`
	LogLevel            *string `json:"log_level"`
	DBFileName          *string `json:"file_storage_path"`
	DatabaseDSN         *string `json:"database_dsn"`
	DBConnectionTimeout *string `json:"db_connection_timeout"`
	MigrationsDir       *string `json:"migrations_dir"`
	StaticDir           *string `json:"static_dir"`
}

// InitOption configures the New constructor.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips command line flag parsing; tests use it to
// keep the global flag state untouched.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (values *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(values)
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
}

func applyJSONFile(values *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fromJSON jsonConfig
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		return err
	}

	if fromJSON.RunAddr != nil {
		values.RunAddr = *fromJSON.RunAddr
	}
	if fromJSON.LogLevel != nil {
		values.LogLevel = *fromJSON.LogLevel
	}
	if fromJSON.DBFileName != nil {
		values.DBFileName = *fromJSON.DBFileName
	}
	if fromJSON.DatabaseDSN != nil {
		values.DatabaseDSN = *fromJSON.DatabaseDSN
	}
	if fromJSON.DBConnectionTimeout != nil {
		timeout, err := time.ParseDuration(*fromJSON.DBConnectionTimeout)
		if err != nil {
			return err
		}
		values.DBConnectionTimeout = timeout
	}
	if fromJSON.MigrationsDir != nil {
		values.MigrationsDir = *fromJSON.MigrationsDir
	}
	if fromJSON.StaticDir != nil {
		values.StaticDir = *fromJSON.StaticDir
	}

	return nil
}

func applyEnv(values *Config) error {
	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return err
	}

	if valuesFromEnv.RunAddr != "" {
		values.RunAddr = valuesFromEnv.RunAddr
	}
	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}
	if valuesFromEnv.DBFileName != "" {
		values.DBFileName = valuesFromEnv.DBFileName
	}
	if valuesFromEnv.DatabaseDSN != "" {
		values.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}
	if valuesFromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}
	if valuesFromEnv.MigrationsDir != "" {
		values.MigrationsDir = valuesFromEnv.MigrationsDir
	}
	if valuesFromEnv.StaticDir != "" {
		values.StaticDir = valuesFromEnv.StaticDir
	}

	return nil
}

// applyFlags parses the command line with the current values as defaults, so
// flags that were not passed leave the merged configuration untouched.
func applyFlags(values *Config) error {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	flags.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
	flags.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
	flags.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with database")
	flags.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "a string with the database connection details")
	flags.StringVar(&values.StaticDir, "s", values.StaticDir, "directory with the static root page")
	flags.String("c", "", "path to a JSON config file (also the CONFIG env variable)")

	return flags.Parse(os.Args[1:])
}

// configFilePath resolves the JSON config file location from the CONFIG env
// variable or the -c flag, env taking precedence.
func configFilePath() string {
	if fromEnv := os.Getenv("CONFIG"); fromEnv != "" {
		return fromEnv
	}

	for i, arg := range os.Args[1:] {
		if arg == "-c" && i+1 < len(os.Args[1:]) {
			return os.Args[1:][i+1]
		}
	}

	return ""
}

// New builds the configuration with priority CLI flags > env vars > JSON
// config file > defaults, then validates the result.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if path := configFilePath(); path != "" {
		if err := applyJSONFile(values, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(values); err != nil {
		return nil, err
	}

	if !options.disableFlagsParsing {
		if err := applyFlags(values); err != nil {
			return nil, err
		}
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
