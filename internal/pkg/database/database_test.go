package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default config", func(c *Config) {}, false},
		{"missing host", func(c *Config) { c.Host = "" }, true},
		{"invalid port", func(c *Config) { c.Port = 0 }, true},
		{"missing user", func(c *Config) { c.User = "" }, true},
		{"missing dbname", func(c *Config) { c.DBName = "" }, true},
		{"invalid SSL mode", func(c *Config) { c.SSLMode = "sometimes" }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"idle exceeds open", func(c *Config) { c.MaxIdleConns = 50; c.MaxOpenConns = 10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = ""

	dsn := cfg.DSN()
	assert.True(t, strings.HasPrefix(dsn, "host=localhost port=5432 user=postgres"))
	assert.Contains(t, dsn, "dbname=raven")
	assert.Contains(t, dsn, "TimeZone=UTC")
}

func TestIsRecordNotFoundError(t *testing.T) {
	assert.True(t, IsRecordNotFoundError(gorm.ErrRecordNotFound))
	assert.False(t, IsRecordNotFoundError(nil))
}
