package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reliablemail/pkg/config"
)

type TestConfigDefault struct {
	TestString string `env:"TEST_STRING_DEFAULT" envDefault:"default_value"`
	TestInt    int    `env:"TEST_INT_DEFAULT" envDefault:"42"`
	TestBool   bool   `env:"TEST_BOOL_DEFAULT" envDefault:"true"`
}

type TestConfigSuccess struct {
	TestString string `env:"TEST_STRING_SUCCESS" envDefault:"default_value"`
	TestInt    int    `env:"TEST_INT_SUCCESS" envDefault:"42"`
	TestBool   bool   `env:"TEST_BOOL_SUCCESS" envDefault:"true"`
}

type RequiredConfig struct {
	Required string `env:"REQUIRED_VALUE,required"`
}

type nestedConfig struct {
	Driver string `env:"TEST_NESTED_DRIVER" envDefault:"redis"`
	Inner  TestConfigDefault
}

func TestParse_Success(t *testing.T) {
	t.Setenv("TEST_STRING_SUCCESS", "test_value")
	t.Setenv("TEST_INT_SUCCESS", "100")
	t.Setenv("TEST_BOOL_SUCCESS", "false")

	var cfg TestConfigSuccess
	err := config.Parse(&cfg)

	require.NoError(t, err, "Parse should not return an error with valid environment variables")
	assert.Equal(t, "test_value", cfg.TestString, "TestString should match environment variable")
	assert.Equal(t, 100, cfg.TestInt, "TestInt should match environment variable")
	assert.Equal(t, false, cfg.TestBool, "TestBool should match environment variable")
}

func TestParse_DefaultValues(t *testing.T) {
	unsetEnv(t, "TEST_STRING_DEFAULT", "TEST_INT_DEFAULT", "TEST_BOOL_DEFAULT")

	var cfg TestConfigDefault
	err := config.Parse(&cfg)

	require.NoError(t, err, "Parse should not return an error when using default values")
	assert.Equal(t, "default_value", cfg.TestString, "TestString should use default value")
	assert.Equal(t, 42, cfg.TestInt, "TestInt should use default value")
	assert.Equal(t, true, cfg.TestBool, "TestBool should use default value")
}

func TestParse_NestedWithoutPrefix(t *testing.T) {
	unsetEnv(t, "TEST_NESTED_DRIVER", "TEST_STRING_DEFAULT")
	t.Setenv("TEST_STRING_DEFAULT", "inner_value")

	var cfg nestedConfig
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, "redis", cfg.Driver)
	assert.Equal(t, "inner_value", cfg.Inner.TestString)
	assert.Equal(t, 42, cfg.Inner.TestInt)
}

func TestParse_MissingRequired(t *testing.T) {
	unsetEnv(t, "REQUIRED_VALUE")

	var cfg RequiredConfig
	err := config.Parse(&cfg)

	require.Error(t, err, "Parse should return an error when a required value is missing")
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	t.Setenv("REQUIRED_VALUE", "ok")
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, "ok", cfg.Required)
}

func TestParse_InvalidValue(t *testing.T) {
	t.Setenv("TEST_INT_SUCCESS", "not-a-number")

	var cfg TestConfigSuccess
	assert.ErrorIs(t, config.Parse(&cfg), config.ErrParsingConfig)
}

func TestParse_NilPointer(t *testing.T) {
	var cfg *TestConfigSuccess
	err := config.Parse(cfg)

	require.Error(t, err, "Parse should return an error when given a nil pointer")
	assert.ErrorIs(t, err, config.ErrNilPointer)
}
