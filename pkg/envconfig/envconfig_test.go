package envconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SMARTCHEF_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("SMARTCHEF_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SMARTCHEF_TEST_MISSING", "fallback"))

	t.Setenv("SMARTCHEF_TEST_EMPTY", "")
	assert.Equal(t, "fallback", GetEnv("SMARTCHEF_TEST_EMPTY", "fallback"))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nSMARTCHEF_FILE_A=one\nSMARTCHEF_FILE_B = \"two\"\nmalformed line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("SMARTCHEF_FILE_B", "preexisting")
	defer os.Unsetenv("SMARTCHEF_FILE_A")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "one", os.Getenv("SMARTCHEF_FILE_A"))
	// Existing variables win over the file.
	assert.Equal(t, "preexisting", os.Getenv("SMARTCHEF_FILE_B"))
}

func TestLoadEnvFileMissing(t *testing.T) {
	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadAppConfigDefaults(t *testing.T) {
	config := LoadAppConfig()
	assert.Equal(t, "data", config.DataDir)
	assert.Equal(t, 2*time.Second, config.PollInterval)
	assert.InDelta(t, 0.08, config.TaxRate, 1e-9)
}

func TestLoadAppConfigOverrides(t *testing.T) {
	t.Setenv("SMARTCHEF_DATA_DIR", "/tmp/floor")
	t.Setenv("SMARTCHEF_POLL_INTERVAL", "500ms")
	t.Setenv("SMARTCHEF_TAX_RATE", "0.10")
	t.Setenv("SMARTCHEF_TIP_PERCENT", "0.15")

	config := LoadAppConfig()
	assert.Equal(t, "/tmp/floor", config.DataDir)
	assert.Equal(t, 500*time.Millisecond, config.PollInterval)
	assert.InDelta(t, 0.10, config.TaxRate, 1e-9)
	assert.InDelta(t, 0.15, config.TipPercent, 1e-9)
}

func TestLoadAppConfigRejectsBadValues(t *testing.T) {
	t.Setenv("SMARTCHEF_POLL_INTERVAL", "-3s")
	t.Setenv("SMARTCHEF_TAX_RATE", "nine percent")

	config := LoadAppConfig()
	assert.Equal(t, 2*time.Second, config.PollInterval)
	assert.InDelta(t, 0.08, config.TaxRate, 1e-9)
}
