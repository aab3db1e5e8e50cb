package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap/zapcore"

	"github.com/hyperlane-xyz/lander/metrics"
	"github.com/hyperlane-xyz/lander/util"
)

// Constants for config default values
const (
	defaultLogLevel              = zapcore.InfoLevel
	defaultLogDirname            = "logs"
	defaultLogFilename           = "landerd.log"
	defaultConfigFileName        = "landerd.conf"
	defaultDataDirname           = "data"
	defaultBatchSize             = 1
	defaultChannelBufferSize     = 100
	defaultQueuePollInterval     = 1 * time.Second
	defaultMaxSubmissionAttempts = 20

	// MaxBatchSize caps BatchSize; larger bundles risk exceeding block gas
	// limits on most chains.
	MaxBatchSize = 100
)

var (
	//   C:\Users\<username>\AppData\Local\ on Windows
	//   ~/.landerd on Linux
	//   ~/Users/<username>/Library/Application Support/Landerd on MacOS
	DefaultHomeDir = btcutil.AppDataDir("landerd", false)
)

// Config is the dispatcher configuration supplied by the host agent process.
type Config struct {
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal"`

	// ChainID identifies the destination chain this dispatcher submits to.
	ChainID string `long:"chainid" description:"The identifier of the destination chain"`

	// SignerAddress is the submitting account whose nonce space the
	// dispatcher manages.
	SignerAddress string `long:"signeraddress" description:"The address of the submitting signer"`

	// BatchSize is the maximum number of payloads bundled into one
	// transaction per building pass. The chain adapter may cap it lower.
	BatchSize uint32 `long:"batchsize" description:"The maximum number of payloads per transaction"`

	// ChannelBufferSize bounds the inter-stage channels; a full channel
	// applies backpressure to the producing stage.
	ChannelBufferSize uint32 `long:"channelbuffersize" description:"The capacity of the channels between pipeline stages"`

	// QueuePollInterval is how long the building stage sleeps when its
	// inbound queue is empty.
	QueuePollInterval time.Duration `long:"queuepollinterval" description:"The interval between checks of an empty building queue"`

	// MaxSubmissionAttempts bounds how many times one transaction is
	// submitted before it is treated as dropped.
	MaxSubmissionAttempts uint32 `long:"maxsubmissionattempts" description:"The maximum number of submission attempts per transaction"`

	DatabaseConfig *DBConfig `group:"dbconfig" namespace:"dbconfig"`

	Metrics *metrics.Config `group:"metrics" namespace:"metrics"`
}

// DefaultConfigWithHome returns the default config rooted at homePath.
func DefaultConfigWithHome(homePath string) Config {
	cfg := Config{
		LogLevel:              defaultLogLevel.String(),
		BatchSize:             defaultBatchSize,
		ChannelBufferSize:     defaultChannelBufferSize,
		QueuePollInterval:     defaultQueuePollInterval,
		MaxSubmissionAttempts: defaultMaxSubmissionAttempts,
		DatabaseConfig:        DefaultDBConfigWithHomePath(homePath),
		Metrics:               metrics.DefaultDispatcherConfig(),
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return cfg
}

// DefaultConfig returns the default config rooted at DefaultHomeDir.
func DefaultConfig() Config {
	return DefaultConfigWithHome(DefaultHomeDir)
}

func CfgFile(homePath string) string {
	return filepath.Join(homePath, defaultConfigFileName)
}

func LogDir(homePath string) string {
	return filepath.Join(homePath, defaultLogDirname)
}

func LogFile(homePath string) string {
	return filepath.Join(LogDir(homePath), defaultLogFilename)
}

func DataDir(homePath string) string {
	return filepath.Join(homePath, defaultDataDirname)
}

// LoadConfig initializes and parses the config using the config file under
// the home directory.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Load configuration file overwriting defaults with any specified options
func LoadConfig(homePath string) (*Config, error) {
	cfgFile := CfgFile(homePath)
	if !util.FileExists(cfgFile) {
		return nil, fmt.Errorf("specified config file does "+
			"not exist in %s", cfgFile)
	}

	var cfg Config
	fileParser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(fileParser).ParseFile(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the given configuration to be sane. This makes sure no
// illegal values or combination of values are set.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch size must not exceed %d, got %d", MaxBatchSize, cfg.BatchSize)
	}

	if cfg.ChannelBufferSize == 0 {
		return fmt.Errorf("channel buffer size must be positive, got %d", cfg.ChannelBufferSize)
	}

	if cfg.QueuePollInterval <= 0 {
		return fmt.Errorf("queue poll interval must be positive, got %v", cfg.QueuePollInterval)
	}

	if cfg.MaxSubmissionAttempts == 0 {
		return fmt.Errorf("max submission attempts must be positive, got %d", cfg.MaxSubmissionAttempts)
	}

	if cfg.DatabaseConfig == nil {
		return fmt.Errorf("db configuration cannot be empty")
	}

	if cfg.Metrics == nil {
		return fmt.Errorf("metrics configuration cannot be empty")
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics configuration validation failed: %w", err)
	}

	return nil
}
