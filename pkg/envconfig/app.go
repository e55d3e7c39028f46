package envconfig

import (
	"strconv"
	"time"
)

// AppConfig holds runtime settings for the order coordination process.
type AppConfig struct {
	DataDir      string        // directory holding orders.json, receipts.json, menu.json, users.json
	AuditDBPath  string        // SQLite change-log path; empty disables the audit log
	PollInterval time.Duration // refresh cadence for consumer views
	TaxRate      float64       // decimal, e.g. 0.08 for 8%
	TipPercent   float64       // default tip when none is chosen at checkout
	MetricsAddr  string        // prometheus listen address; empty disables the listener
}

// DefaultAppConfig returns the defaults used when nothing is configured.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DataDir:      "data",
		AuditDBPath:  "data/audit.db",
		PollInterval: 2 * time.Second,
		TaxRate:      0.08,
		TipPercent:   0.0,
		MetricsAddr:  "",
	}
}

// LoadAppConfig loads application configuration from environment
// variables on top of the defaults.
func LoadAppConfig() AppConfig {
	config := DefaultAppConfig()

	if dataDir := GetEnv("SMARTCHEF_DATA_DIR", ""); dataDir != "" {
		config.DataDir = dataDir
	}

	if auditPath := GetEnv("SMARTCHEF_AUDIT_DB", ""); auditPath != "" {
		config.AuditDBPath = auditPath
	}

	if intervalStr := GetEnv("SMARTCHEF_POLL_INTERVAL", ""); intervalStr != "" {
		if interval, err := time.ParseDuration(intervalStr); err == nil && interval > 0 {
			config.PollInterval = interval
		}
	}

	if taxStr := GetEnv("SMARTCHEF_TAX_RATE", ""); taxStr != "" {
		if tax, err := strconv.ParseFloat(taxStr, 64); err == nil && tax >= 0 && tax <= 1 {
			config.TaxRate = tax
		}
	}

	if tipStr := GetEnv("SMARTCHEF_TIP_PERCENT", ""); tipStr != "" {
		if tip, err := strconv.ParseFloat(tipStr, 64); err == nil && tip >= 0 && tip <= 1 {
			config.TipPercent = tip
		}
	}

	if metricsAddr := GetEnv("SMARTCHEF_METRICS_ADDR", ""); metricsAddr != "" {
		config.MetricsAddr = metricsAddr
	}

	return config
}
