package bridge_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registrykit/bridge"
	"github.com/registrykit/bridge/service/messaging"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, bridge.DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*bridge.Config)
	}{
		{
			name:   "non positive payment ceiling",
			mutate: func(c *bridge.Config) { c.Dispatcher.MaxAllowedPaymentAmount = 0 },
		},
		{
			name:   "no sensitive paths",
			mutate: func(c *bridge.Config) { c.Review.SensitivePaths = nil },
		},
		{
			name:   "fs vendor without base path",
			mutate: func(c *bridge.Config) { c.Queue.Vendor = messaging.VendorFS },
		},
		{
			name:   "unknown queue vendor",
			mutate: func(c *bridge.Config) { c.Queue.Vendor = "kafka" },
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := bridge.DefaultConfig()
			tc.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	document := `
dispatcher:
  maxAllowedPaymentAmount: 250000
inclusionLists:
  legacyToCms: ["*"]
  autoApprove: ["user-1"]
ticketing:
  baseUrl: https://tracker.example.com
  project: REVIEW
  transitionId: "31"
queue:
  vendor: fs
  basePath: /var/spool/bridge
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o644))

	config, err := bridge.LoadConfig(path)
	require.NoError(t, err)
	assert.EqualValues(t, 250000, config.Dispatcher.MaxAllowedPaymentAmount)
	assert.Equal(t, []string{"*"}, config.Lists.LegacyToCMS)
	assert.Equal(t, []string{"user-1"}, config.Lists.AutoApprove)
	assert.Equal(t, "REVIEW", config.Ticketing.Project)
	assert.Equal(t, "31", config.Ticketing.TransitionID)
	assert.Equal(t, messaging.VendorFS, config.Queue.Vendor)
	assert.NotEmpty(t, config.Review.SensitivePaths, "defaults survive a partial document")
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := bridge.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dispatcher:\n  maxAllowedPaymentAmount: 0\n"), 0o644))
	_, err = bridge.LoadConfig(path)
	assert.Error(t, err)
}
