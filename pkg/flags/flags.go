package flags

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config holds all command-line configuration
type Config struct {
	DataDir      string
	PollInterval time.Duration
	MetricsAddr  string
	Headless     bool
	Username     string
	Help         bool
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		DataDir:      "data",
		PollInterval: 2 * time.Second,
		MetricsAddr:  "",
		Headless:     false,
		Username:     "",
		Help:         false,
	}
}

// Parse parses command-line flags and returns configuration
func Parse() Config {
	config := DefaultConfig()

	var (
		dataDir      = flag.String("data-dir", config.DataDir, "Data directory")
		pollInterval = flag.Duration("poll-interval", config.PollInterval, "View refresh cadence")
		metricsAddr  = flag.String("metrics-addr", config.MetricsAddr, "Prometheus listen address")
		headless     = flag.Bool("headless", config.Headless, "Run without the terminal dashboard")
		username     = flag.String("user", config.Username, "Username to log in as")
		help         = flag.Bool("help", false, "Show this screen")
	)

	// Custom usage function
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "SmartChef Restaurant Order System\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  smartchef [--data-dir <dir>] [--poll-interval <dur>] [--user <name>]\n")
		fmt.Fprintf(os.Stderr, "  smartchef --help\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --help              Show this screen.\n")
		fmt.Fprintf(os.Stderr, "  --data-dir DIR      Directory holding the order, receipt, menu and user files.\n")
		fmt.Fprintf(os.Stderr, "  --poll-interval D   Cadence at which views reload the store (default 2s).\n")
		fmt.Fprintf(os.Stderr, "  --metrics-addr A    Serve prometheus metrics on address A (disabled when empty).\n")
		fmt.Fprintf(os.Stderr, "  --headless          Run the role loops without the terminal dashboard.\n")
		fmt.Fprintf(os.Stderr, "  --user NAME         Username to authenticate as.\n")
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	config = Config{
		DataDir:      *dataDir,
		PollInterval: *pollInterval,
		MetricsAddr:  *metricsAddr,
		Headless:     *headless,
		Username:     *username,
		Help:         *help,
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return config
}

// Validate validates the parsed configuration
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.PollInterval < 100*time.Millisecond {
		fmt.Fprintf(os.Stderr, "Warning: poll interval %s is very aggressive for a file-backed store.\n", c.PollInterval)
	}
	return nil
}
