package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultHasSourceMapsOnStrictOff(t *testing.T) {
	b := Default()
	assert.True(t, b.SourceMaps)
	assert.False(t, b.Strict)
	assert.False(t, b.Watch)
}

func TestFromEnvOverlaysPresentVars(t *testing.T) {
	t.Setenv("TOVA_OUT_DIR", "/tmp/out")
	t.Setenv("TOVA_STRICT", "true")

	b := FromEnv(Default())
	assert.Equal(t, "/tmp/out", b.OutDir)
	assert.True(t, b.Strict)
	assert.True(t, b.SourceMaps, "unset TOVA_SOURCE_MAPS must not disturb the default")
}

func TestFromEnvIgnoresUnparseableBool(t *testing.T) {
	t.Setenv("TOVA_STRICT", "not-a-bool")
	b := FromEnv(Default())
	assert.False(t, b.Strict, "unparseable env value falls back to the base")
}

func TestExplicitFlagWinsOverEnv(t *testing.T) {
	t.Setenv("TOVA_STRICT", "false")
	b := Resolve(WithStrict(true))
	assert.True(t, b.Strict)
}
