package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_RejectsInlineThresholdAtOrAboveBlockSize(t *testing.T) {
	cfg := Default()
	cfg.InlineThreshold = cfg.BlockSize
	assert.Error(t, cfg.Validate())

	cfg.InlineThreshold = cfg.BlockSize + 1
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveBlockSize(t *testing.T) {
	cfg := Default()
	cfg.BlockSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("COREOBJ_BLOCK_SIZE", "2048")
	t.Setenv("COREOBJ_INLINE_THRESHOLD", "512")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.BlockSize)
	assert.Equal(t, 512, cfg.InlineThreshold)
}

func TestLoad_NoOverridesUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().APIBindAddr, cfg.APIBindAddr)
}
