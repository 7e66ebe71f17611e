package service

import (
	"errors"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

// storeFailure logs a persistence failure and wraps it as DATA_STORE_ERROR.
func storeFailure(logger *zap.Logger, err error, message string, fields ...zap.Field) *appErrors.Error {
	if logger != nil {
		logger.Error(message, append(fields, zap.Error(err))...)
	}
	return appErrors.Store(err, message)
}

// passThrough returns typed application errors raised inside a transaction unchanged
// and wraps anything else as a store failure.
func passThrough(logger *zap.Logger, err error, message string, fields ...zap.Field) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return storeFailure(logger, err, message, fields...)
}
