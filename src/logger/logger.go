package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"notes-app/src/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ActiveLogFileName ローテーション対象の現在のログファイル名
const ActiveLogFileName = "app.log"

var (
	// Log InitLogger前でも使えるように標準エラー出力のロガーで初期化しておく
	Log         = logrus.New()
	currentFile *lumberjack.Logger
)

// InitLogger ロガーを初期化し、ローテーション付きのファイル出力を設定
func InitLogger(cfg config.LogConfig) error {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// JSON形式でログを出力
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	// ログディレクトリを作成
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return fmt.Errorf("ログディレクトリの作成に失敗: %w", err)
	}

	CloseLogger()
	currentFile = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, ActiveLogFileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}

	// 標準出力とファイルの両方に出力
	log.SetOutput(io.MultiWriter(os.Stdout, currentFile))
	Log = log

	Log.WithField("file", currentFile.Filename).Info("ロガーが初期化されました")
	return nil
}

// GetCurrentLogFile 現在のログファイルパスを取得
func GetCurrentLogFile() string {
	if currentFile != nil {
		return currentFile.Filename
	}
	return ""
}

// Rotate 現在のログファイルを閉じて新しいファイルに切り替える
func Rotate() error {
	if currentFile == nil {
		return nil
	}
	return currentFile.Rotate()
}

// CloseLogger ロガーを終了
func CloseLogger() {
	if currentFile != nil {
		Log.Info("ログファイルを閉じます")
		currentFile.Close()
		currentFile = nil
		Log.SetOutput(os.Stdout)
	}
}

// WithFields フィールド付きログエントリを作成
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

// WithField フィールド付きログエントリを作成（単一フィールド）
func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}
