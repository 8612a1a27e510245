package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yourname/notebook_files/internal/models"
	"github.com/yourname/notebook_files/pkg/fileproto"
)

const (
	DefaultConfigPath    = "./config.yaml"
	DefaultPort          = 8899
	DefaultFileDir       = "./files"
	DefaultUploadDir     = "./uploads"
	DefaultMaxSize       = "100GB"
	DefaultNotifyMethod  = http.MethodGet
	DefaultNotifyTimeout = 10 * time.Second
	DefaultMaxConcurrent = 64
	DefaultLogLevel      = "info"
)

// Config — неизменяемая конфигурация сервиса. Компоненты получают копию значения.
type Config struct {
	Host             string        `yaml:"host" json:"host"`
	Port             int           `yaml:"port" json:"port"`
	FilesPrefix      string        `yaml:"files_prefix" json:"files_prefix"`
	FileDir          string        `yaml:"file_dir" json:"file_dir"`
	UploadDir        string        `yaml:"upload_dir" json:"upload_dir"`
	UploadDirMaxSize ByteSize      `yaml:"upload_dir_max_size" json:"upload_dir_max_size"`
	SweepInterval    time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
	NotifyMethod     string        `yaml:"notify_method" json:"notify_method"`
	NotifyTimeout    time.Duration `yaml:"notify_timeout" json:"notify_timeout"`
	MaxConcurrent    int           `yaml:"max_concurrent_requests" json:"max_concurrent_requests"`
	LogLevel         string        `yaml:"log_level" json:"log_level"`
}

// ByteSize хранит размер в байтах, читаемый из строк вида "100GB" или "512MiB".
type ByteSize int64

// UnmarshalYAML принимает как число, так и человекочитаемую строку.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseByteSize(node.Value)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// String печатает размер в IEC-единицах.
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// ParseByteSize разбирает размер; голое число трактуется как байты.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty size", models.ErrInvalidConfig)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ByteSize(n), nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: size %q: %v", models.ErrInvalidConfig, s, err)
	}
	return ByteSize(n), nil
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	maxSize, _ := ParseByteSize(DefaultMaxSize)
	return Config{
		Port:             DefaultPort,
		FilesPrefix:      fileproto.DefaultPrefix,
		FileDir:          DefaultFileDir,
		UploadDir:        DefaultUploadDir,
		UploadDirMaxSize: maxSize,
		NotifyMethod:     DefaultNotifyMethod,
		NotifyTimeout:    DefaultNotifyTimeout,
		MaxConcurrent:    DefaultMaxConcurrent,
		LogLevel:         DefaultLogLevel,
	}
}

// ListenAddr возвращает адрес для http.Server.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UploadPath возвращает путь эндпоинта загрузки.
func (c Config) UploadPath() string {
	return strings.TrimRight(c.FilesPrefix, "/") + fileproto.UploadSubpath
}

// Validate проверяет согласованность значений.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if !strings.HasPrefix(c.FilesPrefix, "/") || strings.TrimRight(c.FilesPrefix, "/") == "" {
		errs = append(errs, fmt.Errorf("files_prefix %q must start with / and be non-root", c.FilesPrefix))
	}
	if strings.TrimSpace(c.FileDir) == "" {
		errs = append(errs, errors.New("file_dir is empty"))
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		errs = append(errs, errors.New("upload_dir is empty"))
	}
	if c.UploadDirMaxSize <= 0 {
		errs = append(errs, errors.New("upload_dir_max_size must be > 0"))
	}
	if c.SweepInterval < 0 {
		errs = append(errs, errors.New("sweep_interval must be >= 0"))
	}
	switch c.NotifyMethod {
	case http.MethodGet, http.MethodPost:
	default:
		errs = append(errs, fmt.Errorf("notify_method %q is not GET or POST", c.NotifyMethod))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("notify_timeout must be > 0"))
	}
	if c.MaxConcurrent <= 0 {
		errs = append(errs, errors.New("max_concurrent_requests must be > 0"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", models.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// envOverrides: переменные окружения, перекрывающие YAML.
type envOverrides struct {
	Host          string `env:"FILES_HOST"`
	Port          string `env:"FILES_PORT"`
	FilesPrefix   string `env:"FILES_PREFIX"`
	FileDir       string `env:"FILE_DIR"`
	UploadDir     string `env:"UPLOAD_DIR"`
	MaxSize       string `env:"UPLOAD_DIR_MAX_SIZE"`
	SweepInterval string `env:"SWEEP_INTERVAL"`
	NotifyMethod  string `env:"NOTIFY_METHOD"`
	NotifyTimeout string `env:"NOTIFY_TIMEOUT"`
	MaxConcurrent string `env:"MAX_CONCURRENT_REQUESTS"`
	LogLevel      string `env:"LOG_LEVEL"`
}

// Load читает YAML-конфигурацию, .env и ENV-переопределения и возвращает проверенное значение.
// Отсутствующий файл допустим только для пути по умолчанию.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = getenv("CONFIG_PATH", DefaultConfigPath)
		explicit = path != DefaultConfigPath
	}

	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", models.ErrInvalidConfig, path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, err
	}

	if err := applyEnv(&c); err != nil {
		return Config{}, err
	}

	return c, c.Validate()
}

// applyEnv переносит непустые переменные окружения в конфигурацию.
func applyEnv(c *Config) error {
	var o envOverrides
	if _, err := env.UnmarshalFromEnviron(&o); err != nil {
		return fmt.Errorf("%w: environment: %v", models.ErrInvalidConfig, err)
	}

	setString(&c.Host, o.Host)
	setString(&c.FilesPrefix, o.FilesPrefix)
	setString(&c.FileDir, o.FileDir)
	setString(&c.UploadDir, o.UploadDir)
	setString(&c.LogLevel, o.LogLevel)
	if o.NotifyMethod != "" {
		c.NotifyMethod = strings.ToUpper(o.NotifyMethod)
	}

	if o.Port != "" {
		n, err := strconv.Atoi(o.Port)
		if err != nil {
			return fmt.Errorf("%w: FILES_PORT: %v", models.ErrInvalidConfig, err)
		}
		c.Port = n
	}
	if o.MaxConcurrent != "" {
		n, err := strconv.Atoi(o.MaxConcurrent)
		if err != nil {
			return fmt.Errorf("%w: MAX_CONCURRENT_REQUESTS: %v", models.ErrInvalidConfig, err)
		}
		c.MaxConcurrent = n
	}
	if o.MaxSize != "" {
		v, err := ParseByteSize(o.MaxSize)
		if err != nil {
			return err
		}
		c.UploadDirMaxSize = v
	}
	if o.SweepInterval != "" {
		d, err := time.ParseDuration(o.SweepInterval)
		if err != nil {
			return fmt.Errorf("%w: SWEEP_INTERVAL: %v", models.ErrInvalidConfig, err)
		}
		c.SweepInterval = d
	}
	if o.NotifyTimeout != "" {
		d, err := time.ParseDuration(o.NotifyTimeout)
		if err != nil {
			return fmt.Errorf("%w: NOTIFY_TIMEOUT: %v", models.ErrInvalidConfig, err)
		}
		c.NotifyTimeout = d
	}

	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
