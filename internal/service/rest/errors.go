package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/khairunnisaa/inventory/internal/domain"
)

// errorResponse — единый формат ошибки API.
type errorResponse struct {
	Error string `json:"error"`
	// Retryable подсказывает клиенту, что повтор того же запроса может
	// пройти (конфликт версий при параллельном изменении).
	Retryable bool `json:"retryable,omitempty"`
}

// statusFor переводит доменную ошибку в HTTP-статус. Перевод живёт только
// здесь: сервисы и хранилища ничего не знают про HTTP.
func statusFor(err error) int {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrLinesRequired),
		errors.Is(err, domain.ErrItemIDRequired),
		errors.Is(err, domain.ErrQtyInvalid),
		errors.Is(err, domain.ErrDuplicateLine),
		errors.Is(err, domain.ErrVariantMismatch),
		errors.Is(err, domain.ErrVariantRequired),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrItemNameRequired),
		errors.Is(err, domain.ErrVariantSKURequired),
		errors.Is(err, domain.ErrVariantNameEmpty),
		errors.Is(err, domain.ErrStockNegative),
		errors.Is(err, domain.ErrPriceNegative):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrPriceInvalid),
		errors.Is(err, domain.ErrItemNameTaken),
		errors.Is(err, domain.ErrVariantSKUTaken),
		errors.Is(err, domain.ErrItemImmutable),
		domain.IsVersionConflict(err):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	body := errorResponse{Error: err.Error()}
	if domain.IsVersionConflict(err) {
		body.Retryable = true
	}
	if status == http.StatusInternalServerError {
		// Внутренние детали наружу не отдаём.
		body.Error = "internal error"
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
