package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Path  string `env:"SAMPLE_PATH"`
	Name  string `env:"SAMPLE_NAME" envDefault:"fallback"`
	Count int    `env:"SAMPLE_COUNT"`
}

func TestParseEnvMapAppliesDefaults(t *testing.T) {
	var s sample
	require.NoError(t, ParseEnvMap(&s, map[string]string{"SAMPLE_PATH": "/opt/lib.so"}))
	assert.Equal(t, "/opt/lib.so", s.Path)
	assert.Equal(t, "fallback", s.Name)
}

func TestParseEnvMapWrapsErrors(t *testing.T) {
	var s sample
	err := ParseEnvMap(&s, map[string]string{"SAMPLE_COUNT": "many"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestParseEnvReadsProcessEnvironment(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	var s sample
	require.NoError(t, ParseEnv(&s))
	assert.Equal(t, "from-env", s.Name)
}
