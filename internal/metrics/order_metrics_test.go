package metrics

import (
	"testing"
	"time"
)

func TestNewOrderMetrics(t *testing.T) {
	m := NewOrderMetrics()
	if m == nil {
		t.Fatal("expected non-nil metrics")
	}

	// Повторное создание не должно падать на повторной регистрации.
	again := NewOrderMetrics()
	if again == nil {
		t.Fatal("expected non-nil metrics on repeated construction")
	}
}

func TestOrderMetrics_RecordDoesNotPanic(t *testing.T) {
	m := NewOrderMetrics()

	m.RecordInFlightStarted()
	m.RecordOrderCreated(2, 2, 15*time.Millisecond)
	m.RecordInFlightFinished()

	m.RecordInFlightStarted()
	m.RecordOrderFailed("insufficient_stock", 3*time.Millisecond)
	m.RecordOrderFailed("version_conflict", 3*time.Millisecond)
	m.RecordInFlightFinished()
}
