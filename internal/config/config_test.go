package config

import (
	"testing"
	"time"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFs(t *testing.T, files map[string]string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	t.Cleanup(stubs.Reset)
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	stubFs(t, nil)
	t.Setenv("KURUMI_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.Prefix)
	assert.Equal(t, 3, cfg.Commands.Cooldown)
	assert.True(t, cfg.Commands.CaseInsensitive)
	assert.True(t, cfg.RespondToMentions)
	assert.Equal(t, 30*time.Second, cfg.Commands.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "logs/bot.log", cfg.Logging.FilePath)
	assert.False(t, cfg.Logging.FileLogging)
	assert.Equal(t, 64, cfg.Workers)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Empty(t, cfg.Source)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	stubFs(t, map[string]string{
		"bot.yaml": `
prefix: "?"
owners: ["42", " 43 "]
respond_to_mentions: false
commands:
  disabled: [" Ping "]
  cooldown: 5
  case_insensitive: false
  timeout: 5s
logging:
  level: debug
  file_logging: true
storage_path: ${KURUMI_TEST_DIR}/data.json
`,
	})
	t.Setenv("KURUMI_TEST_DIR", "/var/kurumi")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("BOT_WORKERS", "8")

	cfg, err := Load("bot.yaml")
	require.NoError(t, err)

	assert.Equal(t, "bot.yaml", cfg.Source)
	assert.Equal(t, "?", cfg.Prefix)
	assert.Equal(t, []string{"42", "43"}, cfg.Owners)
	assert.False(t, cfg.RespondToMentions)
	assert.Equal(t, []string{"ping"}, cfg.Commands.Disabled)
	assert.Equal(t, 5*time.Second, cfg.CooldownInterval())
	assert.False(t, cfg.Commands.CaseInsensitive)
	assert.Equal(t, 5*time.Second, cfg.Commands.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Logging.FileLogging)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "/var/kurumi/data.json", cfg.StoragePath)

	assert.True(t, cfg.IsOwner("42"))
	assert.False(t, cfg.IsOwner("7"))
	assert.True(t, cfg.IsDisabled("PING"))
}

func TestLoad_InvalidYAML(t *testing.T) {
	stubFs(t, map[string]string{"bad.yaml": "prefix: [unclosed"})
	_, err := Load("bad.yaml")
	assert.Error(t, err)
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Default()
	cfg.Prefix = " "
	cfg.Workers = 0
	cfg.Commands.Timeout = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "prefix")
	assert.Contains(t, msg, "workers")
	assert.Contains(t, msg, "commands.timeout")
	assert.Contains(t, msg, "logging.level")

	assert.NoError(t, Default().Validate())
}

func TestLoadToken(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		stubFs(t, map[string]string{DefaultTokenFile: "from-file"})
		t.Setenv("DISCORD_TOKEN", " from-env ")
		tok, err := LoadToken()
		require.NoError(t, err)
		assert.Equal(t, "from-env", tok)
	})

	t.Run("file fallback", func(t *testing.T) {
		stubFs(t, map[string]string{DefaultTokenFile: "from-file\n"})
		t.Setenv("DISCORD_TOKEN", "")
		tok, err := LoadToken()
		require.NoError(t, err)
		assert.Equal(t, "from-file", tok)
	})

	t.Run("missing", func(t *testing.T) {
		stubFs(t, nil)
		t.Setenv("DISCORD_TOKEN", "")
		_, err := LoadToken()
		assert.Error(t, err)
	})
}

func TestSetLogLevel(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.SetLogLevel(" DEBUG "))
	assert.Equal(t, "debug", cfg.Logging.Level)

	err := cfg.SetLogLevel("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
	assert.Equal(t, "debug", cfg.Logging.Level)
}
