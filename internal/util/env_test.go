package util_test

import (
	"testing"

	"github.com/kashguard/go-near-auth/internal/util"
	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("NEARAUTH_TEST_ENV", "value")
	t.Setenv("NEARAUTH_TEST_ENV_INT", "42")
	t.Setenv("NEARAUTH_TEST_ENV_BOOL", "true")
	t.Setenv("NEARAUTH_TEST_ENV_ARR", "a|b|c")
	t.Setenv("NEARAUTH_TEST_ENV_ENUM", "bogus")

	assert.Equal(t, "value", util.GetEnv("NEARAUTH_TEST_ENV", "default"))
	assert.Equal(t, "default", util.GetEnv("NEARAUTH_TEST_ENV_UNSET", "default"))
	assert.Equal(t, 42, util.GetEnvAsInt("NEARAUTH_TEST_ENV_INT", 1))
	assert.Equal(t, 1, util.GetEnvAsInt("NEARAUTH_TEST_ENV", 1))
	assert.Equal(t, uint64(42), util.GetEnvAsUint64("NEARAUTH_TEST_ENV_INT", 1))
	assert.True(t, util.GetEnvAsBool("NEARAUTH_TEST_ENV_BOOL", false))
	assert.Equal(t, []string{"a", "b", "c"}, util.GetEnvAsStringArr("NEARAUTH_TEST_ENV_ARR", nil, "|"))
	assert.Equal(t, "mainnet", util.GetEnvEnum("NEARAUTH_TEST_ENV_ENUM", "mainnet", []string{"mainnet", "testnet"}))
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/tmp/x", util.ExpandHome("/tmp/x"))
	assert.NotContains(t, util.ExpandHome("~/x"), "~")
}
