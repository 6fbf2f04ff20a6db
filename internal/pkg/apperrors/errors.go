// Package apperrors предоставляет структурированные ошибки приложения.
// Назван apperrors чтобы не конфликтовать со стандартной библиотекой.
package apperrors

import (
	"errors"
	"fmt"
)

// Коды ошибок в формате CATEGORY.SPECIFIC_ERROR.
const (
	// Category: CONFIG — загрузка и валидация конфигурации.
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"

	// Category: DB — доступ к базе данных.
	ErrDBOpen  = "DB.OPEN_FAILED"
	ErrDBQuery = "DB.QUERY_FAILED"

	// Category: OPERATION — бизнес-операции бэкенда.
	ErrOperationFailed = "OPERATION.FAILED"
	ErrNotFound        = "OPERATION.NOT_FOUND"
)

// AppError — ошибка приложения с машиночитаемым кодом.
// Поддерживает wrapping через Unwrap().
//
// ВАЖНО: Message НЕ ДОЛЖЕН содержать персональные данные сотрудников и секреты.
type AppError struct {
	// Code — код в формате CATEGORY.SPECIFIC.
	Code string `json:"code"`

	// Message — человекочитаемое описание.
	Message string `json:"message"`

	// Cause — исходная ошибка, в JSON не сериализуется.
	Cause error `json:"-"`
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает исходную ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError создаёт AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Code возвращает код первой AppError в цепочке err, либо "".
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Code
	}
	return ""
}

// Kind классифицирует ошибку для записи в лог: код AppError,
// иначе Go-тип ошибки (например "*fs.PathError"). Для nil — "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if code := Code(err); code != "" {
		return code
	}
	return fmt.Sprintf("%T", err)
}
