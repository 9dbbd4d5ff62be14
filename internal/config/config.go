// Package config loads the TOML configuration file of the detect demo.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/swdee/go-tflitedetect"
)

type LoggingLevel string

const (
	LoggingLevelDebug = "debug"
	LoggingLevelInfo  = "info"
	LoggingLevelWarn  = "warn"
	LoggingLevelError = "error"
)

type InputType string

const (
	InputTypeFile   = "file"
	InputTypeWebcam = "webcam"
	InputTypeIPC    = "ipc"
)

type ResizeMode string

const (
	ResizeModeLetterbox = "letterbox"
	ResizeModeStretch   = "stretch"
)

// ErrInvalid is returned by Validate for unusable settings
var ErrInvalid = errors.New("invalid config")

// ConfigFile is the structure of the configuration file
type ConfigFile struct {
	Model     ModelConfig
	Input     InputConfig
	Logging   LoggingConfig
	Webserver WebserverConfig
	MQTT      MQTTConfig `toml:"mqtt"`
}

type ModelConfig struct {
	Path        string
	LabelsPath  string  `toml:"labels_path"`
	InputSize   int     `toml:"input_size"`
	MinScore    float32 `toml:"min_score"`
	LabelOffset int     `toml:"label_offset"`
	// Threads is the number of runtime worker threads, 0 uses one per core
	Threads  int
	PoolSize int `toml:"pool_size"`
}

type InputConfig struct {
	Type   string
	Path   string
	Device int
	Resize string
}

type LoggingConfig struct {
	Level         string
	StatPeriodSec uint `toml:"stat_period_sec"`
}

type WebserverConfig struct {
	Port               uint
	ReadTimeoutSec     uint `toml:"read_timeout_sec"`
	WriteTimeoutSec    uint `toml:"write_timeout_sec"`
	ShutdownTimeoutSec uint `toml:"shutdown_timeout_sec"`
}

type MQTTConfig struct {
	Enabled           bool
	Address           string
	ClientID          string `toml:"client_id"`
	Topic             string
	ConnectTimeoutSec uint `toml:"connect_timeout_sec"`
}

// Default returns the configuration used for any setting missing from the
// file
func Default() *ConfigFile {
	return &ConfigFile{
		Model: ModelConfig{
			Path:        "../data/ssd_mobilenet_v1_quant.tflite",
			LabelsPath:  "../data/coco_labels.txt",
			InputSize:   tflitedetect.ModelInputSize,
			MinScore:    tflitedetect.MinScore,
			LabelOffset: tflitedetect.LabelOffset,
			PoolSize:    1,
		},
		Input: InputConfig{
			Type:   InputTypeWebcam,
			Resize: ResizeModeStretch,
		},
		Logging: LoggingConfig{
			Level:         LoggingLevelInfo,
			StatPeriodSec: 10,
		},
		Webserver: WebserverConfig{
			Port:               8080,
			ReadTimeoutSec:     10,
			WriteTimeoutSec:    10,
			ShutdownTimeoutSec: 5,
		},
		MQTT: MQTTConfig{
			Address:           "127.0.0.1:1883",
			ClientID:          "tflitedetect",
			Topic:             "tflitedetect/detections",
			ConnectTimeoutSec: 5,
		},
	}
}

// Unmarshal reads the TOML file at path over the Default configuration
func Unmarshal(path string) (*ConfigFile, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	cfg := Default()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the settings the demo can not run without
func (c *ConfigFile) Validate() error {

	switch {
	case c.Model.Path == "":
		return fmt.Errorf("%w: model.path is empty", ErrInvalid)
	case c.Model.LabelsPath == "":
		return fmt.Errorf("%w: model.labels_path is empty", ErrInvalid)
	case c.Model.InputSize <= 0:
		return fmt.Errorf("%w: model.input_size must be positive", ErrInvalid)
	case c.Model.Threads < 0:
		return fmt.Errorf("%w: model.threads can not be negative", ErrInvalid)
	case c.Model.PoolSize < 1:
		return fmt.Errorf("%w: model.pool_size must be at least 1", ErrInvalid)
	case c.Logging.StatPeriodSec == 0:
		return fmt.Errorf("%w: logging.stat_period_sec must be positive", ErrInvalid)
	case c.MQTT.Enabled && c.MQTT.Topic == "":
		return fmt.Errorf("%w: mqtt.topic is empty", ErrInvalid)
	}

	switch InputType(c.Input.Type) {
	case InputTypeFile, InputTypeWebcam, InputTypeIPC:
	default:
		return fmt.Errorf("%w: unknown input.type %q", ErrInvalid, c.Input.Type)
	}

	switch ResizeMode(c.Input.Resize) {
	case ResizeModeLetterbox, ResizeModeStretch:
	default:
		return fmt.Errorf("%w: unknown input.resize %q", ErrInvalid, c.Input.Resize)
	}

	return nil
}

// SlogLevel maps the logging level name to a slog.Level.  Unknown names return
// false along with slog.LevelError
func (l LoggingConfig) SlogLevel() (slog.Level, bool) {

	switch LoggingLevel(l.Level) {
	case LoggingLevelDebug:
		return slog.LevelDebug, true
	case LoggingLevelInfo:
		return slog.LevelInfo, true
	case LoggingLevelWarn:
		return slog.LevelWarn, true
	case LoggingLevelError:
		return slog.LevelError, true
	default:
		return slog.LevelError, false
	}
}

// Marshal encodes the configuration as TOML, used to print the effective
// settings
func (c *ConfigFile) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
