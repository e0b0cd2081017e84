package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_DefaultsApplyWhenKeysOmitted(t *testing.T) {
	cfg, err := parseConfig([]byte("data_dir: /srv/runs\n"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/runs", cfg.DataDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, ":8050", cfg.ListenAddr)
	assert.Equal(t, int64(10_000), cfg.BucketWidth)
	assert.Equal(t, 100.0, cfg.SuccessReward)
}

func TestParseConfig_FullFile(t *testing.T) {
	cfg, err := parseConfig([]byte(`
data_dir: data
output_dir: out
listen_addr: ":9000"
log_extensions: [".txt"]
config_extensions: [".ini"]
bucket_width: 500
success_reward: 42.5
`))
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, []string{".txt"}, cfg.LogExtensions)
	assert.Equal(t, []string{".ini"}, cfg.ConfigExtensions)
	assert.Equal(t, int64(500), cfg.BucketWidth)
	assert.Equal(t, 42.5, cfg.SuccessReward)
}

func TestParseConfig_UnknownKeyIsAnError(t *testing.T) {
	_, err := parseConfig([]byte("data_dirr: oops\n"))
	assert.Error(t, err)
}
