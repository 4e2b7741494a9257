package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

const (
	internalErrorMessage = "Internal server error"
	timeoutErrorMessage  = "Request timeout"
)

// errorBody: тело ответа с ошибкой.
type errorBody struct {
	Message string         `json:"message"`
	Issues  []domain.Issue `json:"issues,omitempty"`
}

// messageBody: тело успешного ответа без данных.
type messageBody struct {
	Message string `json:"message"`
}

// publicErrors: ошибки, текст которых можно показать клиенту.
var publicErrors = []error{
	domain.ErrCustomerNotFound,
	domain.ErrCustomerEmailTaken,
	domain.ErrItemNotFound,
	domain.ErrItemNameTaken,
	domain.ErrItemInUse,
	domain.ErrOrderNotFound,
	domain.ErrItemsRequired,
	domain.ErrItemQtyInvalid,
	domain.ErrItemValueInvalid,
	domain.ErrTotalMismatch,
	domain.ErrTotalTooLarge,
	domain.ErrStatusNotAllowed,
	domain.ErrInvalidStatusTransition,
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageBody{Message: message})
}

// writeError отображает ошибку use case в HTTP-ответ. Внутренние ошибки логируются и не раскрываются.
func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: validationErr.Message, Issues: validationErr.Issues})
		return
	}

	entry := a.logger.WithError(err).WithFields(log.Fields{
		"request_id": RequestIDFromContext(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	})

	switch kind := domain.KindOf(err); kind {
	case domain.KindBadRequest:
		writeJSON(w, http.StatusBadRequest, errorBody{Message: publicMessage(err)})
	case domain.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Message: publicMessage(err)})
	case domain.KindConflict:
		writeJSON(w, http.StatusConflict, errorBody{Message: publicMessage(err)})
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			entry.Warn("request deadline exceeded")
			writeJSON(w, http.StatusGatewayTimeout, errorBody{Message: timeoutErrorMessage})
			return
		}
		entry.Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: internalErrorMessage})
	}
}

// publicMessage возвращает текст доменной ошибки без внутренних обёрток.
func publicMessage(err error) string {
	for _, target := range publicErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
