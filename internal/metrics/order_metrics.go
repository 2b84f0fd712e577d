package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики конвейера оформления заказов.
type OrderMetrics struct {
	ordersCreated prometheus.Counter
	ordersFailed  *prometheus.CounterVec

	createDuration prometheus.Histogram
	linesPerOrder  prometheus.Histogram

	stockDeductions prometheus.Counter
	inFlight        prometheus.Gauge
}

// NewOrderMetrics создаёт и регистрирует метрики заказов в дефолтном registry.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "inventory_orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		ordersFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "inventory_orders_failed_total",
			Help: "Total number of failed order creations by reason",
		}, []string{"reason"}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "inventory_order_create_duration_seconds",
			Help:    "Duration of order creation attempts in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		linesPerOrder: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "inventory_order_lines",
			Help:    "Number of lines per created order",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		stockDeductions: registerCounter(registerer, prometheus.CounterOpts{
			Name: "inventory_stock_deductions_total",
			Help: "Total number of committed stock deductions",
		}),
		inFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "inventory_orders_in_flight",
			Help: "Number of order creations currently in progress",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated фиксирует успешное оформление заказа.
func (m *OrderMetrics) RecordOrderCreated(lines int, deductions int, duration time.Duration) {
	m.ordersCreated.Inc()
	m.linesPerOrder.Observe(float64(lines))
	m.stockDeductions.Add(float64(deductions))
	m.createDuration.Observe(duration.Seconds())
}

// RecordOrderFailed фиксирует неудачное оформление по причине.
func (m *OrderMetrics) RecordOrderFailed(reason string, duration time.Duration) {
	m.ordersFailed.WithLabelValues(reason).Inc()
	m.createDuration.Observe(duration.Seconds())
}

// RecordInFlightStarted увеличивает число заказов в обработке.
func (m *OrderMetrics) RecordInFlightStarted() {
	m.inFlight.Inc()
}

// RecordInFlightFinished уменьшает число заказов в обработке.
func (m *OrderMetrics) RecordInFlightFinished() {
	m.inFlight.Dec()
}
