package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError    ErrorCode = "DATABASE_ERROR"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Коды жизненного цикла заказа.
	ErrCodeInvalidTransition     ErrorCode = "INVALID_TRANSITION"
	ErrCodeProofingRequired      ErrorCode = "PROOFING_REQUIRED"
	ErrCodeStaleProof            ErrorCode = "STALE_PROOF"
	ErrCodeEscrowAlreadyReleased ErrorCode = "ESCROW_ALREADY_RELEASED"
	ErrCodeEscrowAlreadyRefunded ErrorCode = "ESCROW_ALREADY_REFUNDED"
	ErrCodeRefundExceedsEscrow   ErrorCode = "REFUND_EXCEEDS_ESCROW"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodePermissionDenied:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeRefundExceedsEscrow:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidTransition, ErrCodeProofingRequired,
		ErrCodeStaleProof, ErrCodeEscrowAlreadyReleased, ErrCodeEscrowAlreadyRefunded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsCode сообщает, несёт ли ошибка (возможно, обёрнутая) заданный код.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
