package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_HTTPStatusByCode(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeRefundExceedsEscrow, http.StatusBadRequest},
		{ErrCodeInvalidTransition, http.StatusConflict},
		{ErrCodeProofingRequired, http.StatusConflict},
		{ErrCodeStaleProof, http.StatusConflict},
		{ErrCodeEscrowAlreadyReleased, http.StatusConflict},
		{ErrCodeEscrowAlreadyRefunded, http.StatusConflict},
		{ErrCodeDatabaseError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		err := New(tc.code, "сообщение")
		assert.Equal(t, tc.want, err.HTTPStatus, string(tc.code))
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("нет соединения")
	err := Wrap(cause, ErrCodeDatabaseError, "ошибка базы данных")

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "нет соединения")
}

func TestIsCode_SeesThroughWrapping(t *testing.T) {
	base := New(ErrCodeInvalidTransition, "недопустимый переход статуса")
	wrapped := fmt.Errorf("order service: %w", base)

	assert.True(t, IsCode(wrapped, ErrCodeInvalidTransition))
	assert.False(t, IsCode(wrapped, ErrCodeNotFound))
	assert.False(t, IsCode(errors.New("обычная ошибка"), ErrCodeInvalidTransition))
}
