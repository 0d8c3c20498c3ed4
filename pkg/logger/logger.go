package logger

import (
	"bezs/pkg/config"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Logger      *logrus.Logger
	defaultOnce sync.Once
)

// Initialize 初始化日志
func Initialize(cfg *config.Config) error {
	l := logrus.New()

	// 设置日志等级
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	// 设置日志格式
	if cfg.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	// 创建日志目录
	if cfg.Log.FilePath != "" {
		logDir := filepath.Dir(cfg.Log.FilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}

		// 配置日志轮转
		rotateLogger := &lumberjack.Logger{
			Filename:   cfg.Log.FilePath,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		}

		// 同时输出到文件和控制台
		multiWriter := io.MultiWriter(os.Stdout, rotateLogger)
		l.SetOutput(multiWriter)
	}

	Logger = l
	return nil
}

// GetLogger 获取日志实例，未初始化时（如单元测试）退回到标准输出
func GetLogger() *logrus.Logger {
	if Logger == nil {
		defaultOnce.Do(func() {
			if Logger == nil {
				Logger = logrus.New()
			}
		})
	}
	return Logger
}

// WithModule 带模块字段的日志条目
func WithModule(module string) *logrus.Entry {
	return GetLogger().WithField("module", module)
}
