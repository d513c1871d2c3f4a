package xtmconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xtmkit/pkg/util/xtmutex"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func restoreDefaults(t *testing.T) {
	t.Helper()
	saved := xtmutex.CurrentDefaults()
	t.Cleanup(func() { require.NoError(t, saved.Apply()) })
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadBytesYAML(t *testing.T) {
	cfg, err := LoadBytes([]byte("mutex:\n  blocking_timeout: 2\n  suspending_timeout: 30\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Config{BlockingTimeout: 2, SuspendingTimeout: 30}, cfg)
}

func TestLoadBytesJSON(t *testing.T) {
	cfg, err := LoadBytes([]byte(`{"mutex":{"suspending_timeout":12}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, int64(xtmutex.DefaultTimeoutSeconds), cfg.BlockingTimeout, "缺省键保持默认值")
	assert.Equal(t, int64(12), cfg.SuspendingTimeout)
}

func TestLoadBytesEmptyAndMissingSection(t *testing.T) {
	cfg, err := LoadBytes(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadBytes([]byte("other:\n  key: 1\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadBytesErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		wantErr error
	}{
		{"unsupported format", "x", Format("toml"), ErrUnsupportedFormat},
		{"bad json", "{not json", FormatJSON, ErrParseFailed},
		{"negative", "mutex:\n  blocking_timeout: -1\n", FormatYAML, ErrInvalidValue},
		{"not a number", "mutex:\n  blocking_timeout: abc\n", FormatYAML, ErrParseFailed},
		{"half second yaml", "mutex:\n  blocking_timeout: 0.5\n", FormatYAML, ErrInvalidValue},
		{"fraction yaml", "mutex:\n  blocking_timeout: 2.9\n", FormatYAML, ErrInvalidValue},
		{"fraction json", `{"mutex":{"suspending_timeout":0.25}}`, FormatJSON, ErrInvalidValue},
		{"huge json", `{"mutex":{"suspending_timeout":1e300}}`, FormatJSON, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadBytes([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, Config{}, cfg)
		})
	}
}

func TestLoadBytesWholeFloatSeconds(t *testing.T) {
	cfg, err := LoadBytes([]byte(`{"mutex":{"blocking_timeout":3.0,"suspending_timeout":7}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, Config{BlockingTimeout: 3, SuspendingTimeout: 7}, cfg)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "mutex.yml", "mutex:\n  blocking_timeout: 4\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cfg.BlockingTimeout)

	_, err = Load("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = Load(filepath.Join(dir, "mutex.ini"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestConfigApply(t *testing.T) {
	restoreDefaults(t)

	require.NoError(t, Config{BlockingTimeout: 1, SuspendingTimeout: 9}.Apply())
	assert.Equal(t, time.Second, xtmutex.DefaultBlockingTimeout())
	assert.Equal(t, 9*time.Second, xtmutex.DefaultSuspendingTimeout())

	// 已有实例不受后续 Apply 影响
	m := xtmutex.NewBlocking(0)
	require.NoError(t, Config{BlockingTimeout: 6, SuspendingTimeout: 6}.Apply())
	assert.Equal(t, time.Second, m.Timeout())
}

func TestConfigApplyInvalid(t *testing.T) {
	restoreDefaults(t)
	before := xtmutex.CurrentDefaults()

	err := Config{BlockingTimeout: 3, SuspendingTimeout: maxSeconds + 1}.Apply()
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, before, xtmutex.CurrentDefaults(), "无效配置不修改任何默认值")
}

func TestConfigDefaults(t *testing.T) {
	d := Config{BlockingTimeout: 2, SuspendingTimeout: 3}.Defaults()
	assert.Equal(t, xtmutex.Defaults{Blocking: 2 * time.Second, Suspending: 3 * time.Second}, d)
}
