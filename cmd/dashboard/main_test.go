package main

import (
	"bytes"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestParseFlags_HelpDoesNotPrintSecrets(t *testing.T) {
	env := fakeEnv(map[string]string{
		"CRM_DASHBOARD_PASSWORD": "s3cret-from-env",
		"CRM_DASHBOARD_TOKEN":    "token-from-env",
	})

	var out bytes.Buffer
	_, err := parseFlags([]string{"-h"}, &out, env)
	require.ErrorIs(t, err, flag.ErrHelp)

	assert.Contains(t, out.String(), "-password")
	assert.NotContains(t, out.String(), "s3cret-from-env")
	assert.NotContains(t, out.String(), "token-from-env")
}

func TestParseFlags_EnvironmentFallback(t *testing.T) {
	env := fakeEnv(map[string]string{
		"CRM_DASHBOARD_PASSWORD": "from-env",
		"CRM_DASHBOARD_TOKEN":    "tok",
	})

	opts, err := parseFlags([]string{"-timeout", "3s", "list"}, &bytes.Buffer{}, env)
	require.NoError(t, err)
	assert.Equal(t, "from-env", opts.password)
	assert.Equal(t, "tok", opts.token)
	assert.Equal(t, 3*time.Second, opts.timeout)
	assert.Equal(t, []string{"list"}, opts.args)

	opts, err = parseFlags([]string{"-password", "typed", "list"}, &bytes.Buffer{}, env)
	require.NoError(t, err)
	assert.Equal(t, "typed", opts.password)
}
