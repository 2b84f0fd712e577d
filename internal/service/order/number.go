package order

import (
	"strings"

	"github.com/google/uuid"
)

const (
	orderNumberPrefix = "ORD-"
	orderNumberLength = 12
)

// newOrderNumber генерирует короткий человекочитаемый номер заказа:
// префикс и 12 шестнадцатеричных символов в верхнем регистре из UUID.
// Номер непоследователен и неугадываем; уникальность гарантируется
// ограничением хранилища, коллизия обрабатывается повторной генерацией.
func newOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return orderNumberPrefix + strings.ToUpper(raw[:orderNumberLength])
}
