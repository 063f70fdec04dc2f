package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateWriteKeyCoversBothTiers(t *testing.T) {
	// Only a write key configured.
	gate := NewAPIKeyGate("write-secret", "", "")

	assert.True(t, gate.AllowWrite("write-secret"))
	assert.True(t, gate.AllowRead("write-secret"))

	// No key fails both once anything is configured.
	assert.False(t, gate.AllowWrite(""))
	assert.False(t, gate.AllowRead(""))
	assert.False(t, gate.DevMode())
}

func TestGateNoKeysConfiguredAllowsEverything(t *testing.T) {
	gate := NewAPIKeyGate("", "", "")

	assert.True(t, gate.DevMode())
	assert.True(t, gate.AllowWrite(""))
	assert.True(t, gate.AllowRead(""))
	assert.True(t, gate.AllowWrite("anything"))
	assert.True(t, gate.AllowRead("anything"))
}

func TestGateReadKeyNeverGrantsWrite(t *testing.T) {
	// Only a read key configured.
	gate := NewAPIKeyGate("", "read-secret", "")

	assert.True(t, gate.AllowRead("read-secret"))
	assert.False(t, gate.AllowWrite("read-secret"))
	assert.False(t, gate.AllowWrite(""))
}

func TestGateLegacyKeySatisfiesBothTiers(t *testing.T) {
	gate := NewAPIKeyGate("write-secret", "read-secret", "legacy-secret")

	assert.True(t, gate.AllowWrite("legacy-secret"))
	assert.True(t, gate.AllowRead("legacy-secret"))
	assert.True(t, gate.AllowWrite("write-secret"))
	assert.True(t, gate.AllowRead("read-secret"))
	assert.False(t, gate.AllowWrite("read-secret"))
	assert.False(t, gate.AllowRead("wrong"))
}

func TestGateEmptyPresentedKeyNeverMatchesEmptyConfig(t *testing.T) {
	// A configured write key with unconfigured legacy: the empty
	// presented key must not match the empty legacy slot.
	gate := NewAPIKeyGate("write-secret", "", "")
	assert.False(t, gate.AllowWrite(""))

	gate = NewAPIKeyGate("", "read-secret", "")
	assert.False(t, gate.AllowRead(""))
}
