package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
prefix: svc
separator: "_"
tags:
  env: prod
  region: eu
report_interval: 10s
`))
	require.NoError(t, err)
	assert.Equal(t, "svc", cfg.Prefix)
	assert.Equal(t, "_", cfg.Separator)
	assert.Equal(t, map[string]string{"env": "prod", "region": "eu"}, cfg.Tags)
	assert.Equal(t, "10s", cfg.ReportInterval)
}

func TestParseConfigInvalidYAML(t *testing.T) {
	_, err := ParseConfig([]byte("prefix: [unterminated"))
	require.Error(t, err)
}

func TestParseConfigInvalidInterval(t *testing.T) {
	_, err := ParseConfig([]byte("report_interval: soon"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report_interval")
}

func TestConfigNewRootScope(t *testing.T) {
	cfg := Config{
		Prefix: "svc",
		Tags:   map[string]string{"env": "test"},
	}

	scope, err := cfg.NewRootScope()
	require.NoError(t, err)
	assert.Equal(t, "svc", scope.prefix)
	assert.Equal(t, DefaultSeparator, scope.separator)
	assert.Equal(t, map[string]string{"env": "test"}, scope.tags)
	assert.Equal(t, "svc.requests", scope.fullyQualifiedName("requests"))
}

func TestConfigNewRootScopeBadInterval(t *testing.T) {
	cfg := Config{ReportInterval: "not-a-duration"}
	_, err := cfg.NewRootScope()
	require.Error(t, err)
}

func TestConfigNewRootScopeExtraOptions(t *testing.T) {
	reporter := newCapturingReporter()
	cfg := Config{Prefix: "svc", ReportInterval: "1h"}

	scope, err := cfg.NewRootScope(WithReporter(reporter))
	require.NoError(t, err)

	scope.Counter("requests").Inc(1)
	require.NoError(t, scope.Close())

	counters := reporter.snapshotCounters()
	require.Len(t, counters, 1)
	assert.Equal(t, "svc.requests", counters[0].name)
	assert.Equal(t, 1, reporter.closeCount())
}
