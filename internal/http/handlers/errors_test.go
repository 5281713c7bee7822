package handlers

import (
	"database/sql/driver"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
	"github.com/ignatzorin/masterskaya-backend/internal/repository"
)

func TestRespondOrderError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
	}{
		{repository.ErrOrderNotFound, http.StatusNotFound},
		{repository.ErrListingNotFound, http.StatusNotFound},
		{repository.ErrProofNotFound, http.StatusNotFound},
		{repository.ErrRefundNotFound, http.StatusNotFound},
		{repository.ErrInvalidTransition, http.StatusConflict},
		{repository.ErrProofingRequired, http.StatusConflict},
		{repository.ErrProofAlreadyPending, http.StatusConflict},
		{repository.ErrStaleProof, http.StatusConflict},
		{repository.ErrEscrowAlreadyReleased, http.StatusConflict},
		{repository.ErrEscrowAlreadyRefunded, http.StatusConflict},
		{repository.ErrRefundAlreadyResolved, http.StatusConflict},
		{repository.ErrRefundExceedsEscrow, http.StatusBadRequest},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondOrderError(c, tc.err)
		assert.Equal(t, tc.code, w.Code, "ошибка: %v", tc.err)
	}
}

func TestRespondOrderError_WrappedSentinel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	// Сервисы оборачивают ошибки хранилища, маппинг должен видеть их через errors.As.
	err := fmt.Errorf("order service: не найдено объявление: %w", repository.ErrListingNotFound)
	respondOrderError(c, err)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondOrderError_PermissionErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	permissionErrs := []error{
		apperror.New(apperror.ErrCodePermissionDenied, "у вас нет прав на управление этим заказом"),
		apperror.New(apperror.ErrCodePermissionDenied, "у вас нет доступа к этому заказу"),
		apperror.New(apperror.ErrCodePermissionDenied, "подтвердить получение может только заказчик"),
	}

	for _, err := range permissionErrs {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondOrderError(c, err)
		assert.Equal(t, http.StatusForbidden, w.Code, "ошибка: %v", err)
	}
}

func TestRespondOrderError_ValidationMapsToBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	err := apperror.Wrap(fmt.Errorf("сумма должна быть положительной"),
		apperror.ErrCodeValidation, "сумма должна быть положительной")
	respondOrderError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "сумма должна быть положительной")
}

func TestRespondOrderError_UnknownErrorHidesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	// Сбой инфраструктуры не должен просачиваться к клиенту.
	err := fmt.Errorf("order repository: begin tx %w", driver.ErrBadConn)
	respondOrderError(c, err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "внутренняя ошибка сервера")
	assert.NotContains(t, w.Body.String(), "bad connection")
	assert.NotContains(t, w.Body.String(), "repository")
}
