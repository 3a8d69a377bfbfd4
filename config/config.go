package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/logger"
	"github.com/lunchact/Waves/util"
)

const (
	defaultDataDirname = "data"
	defaultLogDirname  = "logs"
	defaultLogFilename = "wavesd.log"
	defaultLogLevel    = "info"
)

// DefaultHomeDir is the default home directory for wavesd.
var DefaultHomeDir = util.AppDataDir("wavesd", false)

// Flags holds the command-line options of the block import daemon.
type Flags struct {
	HomeDir            string `short:"b" long:"homedir" description:"Directory to store data"`
	BlocksFile         string `long:"blocksfile" description:"File with serialized blocks to import"`
	LogLevel           string `short:"d" long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	Testnet            bool   `long:"testnet" description:"Use the test network"`
	Simnet             bool   `long:"simnet" description:"Use the simulation network"`
	MaxBlockComplexity int64  `long:"maxblockcomplexity" description:"Override the per-block resource budget"`
}

// Config is the parsed and resolved daemon configuration.
type Config struct {
	Flags
	NetParams *chainconfig.Params
	DataDir   string
	LogDir    string
}

// Parse parses the CLI arguments into a resolved Config.
func Parse() (*Config, error) {
	cfgFlags := &Flags{
		HomeDir:  DefaultHomeDir,
		LogLevel: defaultLogLevel,
	}
	parser := flags.NewParser(cfgFlags, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}
	return resolve(cfgFlags)
}

func resolve(cfgFlags *Flags) (*Config, error) {
	cfg := &Config{Flags: *cfgFlags}

	if cfg.Testnet && cfg.Simnet {
		return nil, errors.New("--testnet and --simnet may not be used together")
	}
	switch {
	case cfg.Testnet:
		cfg.NetParams = &chainconfig.TestnetParams
	case cfg.Simnet:
		cfg.NetParams = &chainconfig.SimnetParams
	default:
		cfg.NetParams = &chainconfig.MainnetParams
	}

	if cfg.MaxBlockComplexity < 0 {
		return nil, errors.New("--maxblockcomplexity may not be negative")
	}

	if _, ok := logger.LevelFromString(cfg.LogLevel); !ok {
		return nil, errors.Errorf("unknown log level %q", cfg.LogLevel)
	}

	cfg.HomeDir = cleanAndExpandPath(cfg.HomeDir)
	cfg.DataDir = filepath.Join(cfg.HomeDir, cfg.NetParams.Name, defaultDataDirname)
	cfg.LogDir = filepath.Join(cfg.HomeDir, cfg.NetParams.Name, defaultLogDirname)
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	return cfg, nil
}

// LogFile returns the path of the rotated log file.
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = strings.Replace(path, "~", homeDir, 1)
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
