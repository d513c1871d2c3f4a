package xtmconf

import "errors"

// 配置加载和解析相关错误。
var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xtmconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xtmconf: unsupported config format")

	// ErrLoadFailed 表示配置读取失败。
	ErrLoadFailed = errors.New("xtmconf: failed to load config")

	// ErrParseFailed 表示配置解析或反序列化失败。
	ErrParseFailed = errors.New("xtmconf: failed to parse config")

	// ErrInvalidValue 表示超时取值无效（负数）。
	ErrInvalidValue = errors.New("xtmconf: invalid timeout value")
)
