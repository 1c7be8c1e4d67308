package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// InitLogger はGO_ENVに合わせてグローバルロガーを作る。productionはJSON
func InitLogger(env string) error {
	var err error
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err = config.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(logger)
	return nil
}

// 未初期化ならNop
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// テストで差し替える
func SetLogger(l *zap.Logger) {
	logger = l
}

// 終了前にバッファを書き出す
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
