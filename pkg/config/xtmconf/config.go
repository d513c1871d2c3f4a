package xtmconf

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xtmkit/pkg/util/xtmutex"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（推荐用于 K8s ConfigMap）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// rootKey 是配置中 mutex 段的键。
const rootKey = "mutex"

// Config 是进程级默认超时配置，单位秒。
type Config struct {
	BlockingTimeout   int64 `koanf:"blocking_timeout"`
	SuspendingTimeout int64 `koanf:"suspending_timeout"`
}

// DefaultConfig 返回初始默认值。
func DefaultConfig() Config {
	return Config{
		BlockingTimeout:   xtmutex.DefaultTimeoutSeconds,
		SuspendingTimeout: xtmutex.DefaultTimeoutSeconds,
	}
}

// maxSeconds 保证换算为 time.Duration 时不溢出。
const maxSeconds = math.MaxInt64 / int64(time.Second)

// Validate 检查取值范围。
func (c Config) Validate() error {
	if !inRange(c.BlockingTimeout) || !inRange(c.SuspendingTimeout) {
		return fmt.Errorf("%w: blocking_timeout=%d suspending_timeout=%d",
			ErrInvalidValue, c.BlockingTimeout, c.SuspendingTimeout)
	}
	return nil
}

func inRange(seconds int64) bool {
	return seconds >= 0 && seconds <= maxSeconds
}

// Defaults 转换为 xtmutex 的快照，供组合根显式传递。
func (c Config) Defaults() xtmutex.Defaults {
	return xtmutex.Defaults{
		Blocking:   time.Duration(c.BlockingTimeout) * time.Second,
		Suspending: time.Duration(c.SuspendingTimeout) * time.Second,
	}
}

// Apply 将配置写入 xtmutex 的进程级默认值。
// 取值无效时两者都不修改。
func (c Config) Apply() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.Defaults().Apply()
}

// Load 从文件加载配置，根据扩展名（.yaml/.yml/.json）检测格式。
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return LoadBytes(data, format)
}

// LoadBytes 从字节数据加载配置，需要显式指定格式。
// 空数据返回 [DefaultConfig]。
func LoadBytes(data []byte, format Format) (Config, error) {
	parser, err := parserFor(format)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	// 预填默认值，缺省的键保持不变
	var invalid error
	if err := k.UnmarshalWithConf(rootKey, &cfg, koanf.UnmarshalConf{
		Tag:           "koanf",
		DecoderConfig: decoderConfig(&cfg, &invalid),
	}); err != nil {
		if invalid != nil {
			return Config{}, invalid
		}
		return Config{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decoderConfig 与 koanf 默认解码配置一致，另加 wholeSecondsHook。
// hook 拒绝的值写入 *invalid，便于返回 ErrInvalidValue 而非 ErrParseFailed。
func decoderConfig(result *Config, invalid *error) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook:       wholeSecondsHook(invalid),
		Result:           result,
		WeaklyTypedInput: true,
	}
}

// wholeSecondsHook 拒绝带小数部分的秒数。
// JSON 数字总是解析为 float64，mapstructure 转换为整数时会直接截断，
// 0.5 会静默变成 0。
func wholeSecondsHook(invalid *error) mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to.Kind() != reflect.Int64 {
			return data, nil
		}
		var f float64
		switch v := data.(type) {
		case float64:
			f = v
		case float32:
			f = float64(v)
		default:
			return data, nil
		}
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			err := fmt.Errorf("%w: timeout must be whole seconds, got %v", ErrInvalidValue, f)
			if *invalid == nil {
				*invalid = err
			}
			return nil, err
		}
		return int64(f), nil
	}
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func parserFor(format Format) (koanf.Parser, error) {
	switch format {
	case FormatYAML:
		return yaml.Parser(), nil
	case FormatJSON:
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
