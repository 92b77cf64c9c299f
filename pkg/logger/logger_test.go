package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestInit 测试日志初始化
func TestInit(t *testing.T) {
	err := Init(&Config{Level: "info", Output: "stdout"})
	require.NoError(t, err)

	assert.NotNil(t, Logger)
	assert.NotNil(t, Sugar)
}

// TestInitNilConfig nil 配置使用默认值
func TestInitNilConfig(t *testing.T) {
	require.NoError(t, Init(nil))
	assert.True(t, Logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Logger.Core().Enabled(zapcore.DebugLevel))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

// TestInitWithFile 测试文件输出
func TestInitWithFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "logs", "logmein.log")

	err := Init(&Config{Level: "info", Output: "file", FilePath: tmpFile})
	require.NoError(t, err)

	Info("测试日志", zap.String("key", "value"))
	Sync()

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "测试日志")
	assert.Contains(t, string(content), "[INFO]")
	// 文件中不应出现 ANSI 颜色码
	assert.False(t, strings.Contains(string(content), "\033["))
}

func TestInitWithFileMissingPath(t *testing.T) {
	err := Init(&Config{Output: "file"})
	assert.Error(t, err)
}

// TestLogLevels 测试各个日志级别（只验证不会panic）
func TestLogLevels(t *testing.T) {
	require.NoError(t, Init(&Config{Level: "debug", Output: "stderr"}))

	tests := []struct {
		name string
		fn   func()
	}{
		{"Debug", func() { Debug("debug message", zap.String("key", "value")) }},
		{"Info", func() { Info("info message", zap.String("key", "value")) }},
		{"Warn", func() { Warn("warn message", zap.String("key", "value")) }},
		{"Error", func() { Error("error message", zap.String("key", "value")) }},
		{"With", func() { With(zap.String("task_id", "t-1")).Info("with message") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, tt.fn)
		})
	}
}

// TestSyncWithNilLogger Logger为nil时Sync不应panic
func TestSyncWithNilLogger(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	Logger = nil
	assert.NotPanics(t, Sync)
}

func BenchmarkInfo(b *testing.B) {
	_ = Init(&Config{Level: "info", Output: "file", FilePath: filepath.Join(b.TempDir(), "bench.log")})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Info("benchmark test", zap.Int("iteration", i))
	}
}
