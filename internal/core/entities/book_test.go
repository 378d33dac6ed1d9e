package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdownFlavor_Valid(t *testing.T) {
	require.True(t, FlavorPlain.Valid())
	require.True(t, FlavorGFM.Valid())
	require.True(t, FlavorMDX.Valid())
	require.False(t, MarkdownFlavor("rst").Valid())
}

func TestDefaultBookConfig_IsValidOnceInputSet(t *testing.T) {
	cfg := DefaultBookConfig()
	cfg.Paths.InputRoot = "/tmp/book"
	require.NoError(t, cfg.Validate())
}

func TestBookConfig_Validate_MissingInput(t *testing.T) {
	cfg := DefaultBookConfig()
	err := cfg.Validate()
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, ConfigMissingInput, cerr.Kind)
}

func TestBookConfig_Validate_InvalidFlavor(t *testing.T) {
	cfg := DefaultBookConfig()
	cfg.Paths.InputRoot = "/tmp/book"
	cfg.Markdown = "rst"
	err := cfg.Validate()
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, ConfigInvalidValue, cerr.Kind)
}
