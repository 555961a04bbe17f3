package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/redirector-packager/internal/logger"
)

// Config holds the settings of a packaging run.
type Config struct {
	// Root is the extension source tree.
	Root string `yaml:"root"`
	// OutputFolder receives the archives; relative paths are resolved against Root.
	OutputFolder string `yaml:"output_folder"`
	// Certificate is the Opera signing certificate; relative paths are resolved against Root.
	Certificate string `yaml:"certificate"`
	// SignerCommand is the command line of the Opera signer. The archive, signed package
	// and certificate paths are appended as positional arguments.
	SignerCommand string `yaml:"signer_command"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// FailFast stops the run at the first failing target instead of attempting the rest.
	FailFast bool `yaml:"fail_fast"`
}

const (
	// DefaultConfigFilename is the default settings file. It is hidden so it never lands in a package.
	DefaultConfigFilename = ".redirector-packager.yaml"

	// DefaultRoot is the extension source tree used when nothing else is configured.
	DefaultRoot = "."

	// DefaultOutputFolder is where archives are written.
	DefaultOutputFolder = "build"

	// DefaultCertificate is the Opera signing certificate.
	DefaultCertificate = "extension-certificate.pem"

	// DefaultSignerCommand produces the signed Opera package.
	DefaultSignerCommand = "./nex-build.sh"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEmptySignerCommand is returned when the signer command splits into nothing.
	errEmptySignerCommand = errors.New("signer command is empty")
	// errUnknownLogLevel is returned for levels zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Root:          DefaultRoot,
		OutputFolder:  DefaultOutputFolder,
		Certificate:   DefaultCertificate,
		SignerCommand: DefaultSignerCommand,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads configuration from the provided path and fills defaults.
// A missing file yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills empty fields with defaults and checks the signer command and log level.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.Root == "" {
		settings.Root = DefaultRoot
	}

	if settings.OutputFolder == "" {
		settings.OutputFolder = DefaultOutputFolder
	}

	if settings.Certificate == "" {
		settings.Certificate = DefaultCertificate
	}

	if settings.SignerCommand == "" {
		settings.SignerCommand = DefaultSignerCommand
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	args, err := shlex.Split(settings.SignerCommand)
	if err != nil {
		return fmt.Errorf("invalid signer command: %w", err)
	}

	if len(args) == 0 {
		return errEmptySignerCommand
	}

	return nil
}

// ResolvePath joins a relative setting with Root; absolute paths are returned unchanged.
func (c *Config) ResolvePath(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}

	return filepath.Join(c.Root, name)
}
