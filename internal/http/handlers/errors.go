package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/masterskaya-backend/internal/logger"
	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
)

// respondOrderError транслирует ошибки движка заказов в HTTP статусы.
// Ошибки сервисов и хранилища типизированы и сами знают свой статус:
// отказы в доступе отдаются как 403, ошибки входных данных как 400,
// конфликты жизненного цикла (гонки переходов, устаревшие макеты,
// повторные выплаты) как 409, чтобы клиент перечитал состояние и повторил.
// Всё нераспознанное считается инфраструктурным сбоем: клиент получает
// общий ответ 500, подробности остаются только в логе.
func respondOrderError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}

	if logger.Log != nil {
		logger.Log.WithError(err).Error("Необработанная ошибка запроса")
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
}
