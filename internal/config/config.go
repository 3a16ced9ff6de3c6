package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/strogmv/websubc/compiler/syntax"
)

// DefaultFile is looked up in the package root when no file is given.
const DefaultFile = "websubc.cue"

type Config struct {
	AnnotationPrefix string `json:"annotationPrefix,omitempty" env:"WEBSUBC_ANNOTATION_PREFIX" env-default:"websub" validate:"required,identifier"`
	AnnotationName   string `json:"annotationName,omitempty" env:"WEBSUBC_ANNOTATION_NAME" env-default:"MetaInfo" validate:"required,identifier"`
	FieldName        string `json:"fieldName,omitempty" env:"WEBSUBC_FIELD_NAME" env-default:"servicePath" validate:"required,identifier"`
	ListenerPrefix   string `json:"listenerPrefix,omitempty" env:"WEBSUBC_LISTENER_PREFIX" env-default:"websub" validate:"required,identifier"`
	PathLength       int    `json:"pathLength,omitempty" env:"WEBSUBC_PATH_LENGTH" env-default:"10" validate:"min=4,max=64"`
	IndentWidth      int    `json:"indentWidth,omitempty" env:"WEBSUBC_INDENT_WIDTH" env-default:"4" validate:"min=1,max=16"`
	LogLevel         string `json:"logLevel,omitempty" env:"WEBSUBC_LOG_LEVEL" env-default:"info" validate:"oneof=trace debug info warn warning error"`
	LogFormat        string `json:"logFormat,omitempty" env:"WEBSUBC_LOG_FORMAT" env-default:"json" validate:"oneof=json text"`
	ServiceName      string `json:"serviceName,omitempty" env:"WEBSUBC_SERVICE_NAME" env-default:"websubc" validate:"required"`
	OTLPEndpoint     string `json:"otlpEndpoint,omitempty" env:"WEBSUBC_OTLP_ENDPOINT" validate:"omitempty,hostname_port"`
	OTLPInsecure     bool   `json:"otlpInsecure,omitempty" env:"WEBSUBC_OTLP_INSECURE"`
	MetricsFile      string `json:"metricsFile,omitempty" env:"WEBSUBC_METRICS_FILE"`
}

// Load builds the configuration from the CUE file at path (optional; a
// missing DefaultFile is ignored), then environment variables, then
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decodeCUE(path, data, &cfg); err != nil {
				return nil, err
			}
		case os.IsNotExist(err) && isDefaultFile(path):
		default:
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return syntax.IsIdentifier(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// Indent is the indentation unit of synthesized fields.
func (c *Config) Indent() string {
	return strings.Repeat(" ", c.IndentWidth)
}

func isDefaultFile(path string) bool {
	return filepath.Base(path) == DefaultFile
}
