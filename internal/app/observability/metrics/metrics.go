package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	ProviderRequestsTotal   metric.Int64Counter
	ProviderRequestDuration metric.Float64Histogram
	CheckoutTransitions     metric.Int64Counter
	BookingsTotal           metric.Int64Counter
	ChatCompletionsTotal    metric.Int64Counter
	CustomerCapturesTotal   metric.Int64Counter
	DBQueryDurationSeconds  metric.Float64Histogram
	DBQueryErrorsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("saferstays")
		m := &AppMetrics{}

		m.HTTPRequestsTotal = counter(meter, "http_requests_total", "Total number of HTTP requests completed", "{request}")
		m.HTTPRequestDuration = histogram(meter, "http_request_duration_seconds", "Duration of HTTP requests in seconds")
		m.ProviderRequestsTotal = counter(meter, "provider_requests_total", "Total number of calls to the hotel inventory provider", "{request}")
		m.ProviderRequestDuration = histogram(meter, "provider_request_duration_seconds", "Duration of hotel inventory provider calls in seconds")
		m.CheckoutTransitions = counter(meter, "checkout_transitions_total", "Checkout state transitions by target state", "{transition}")
		m.BookingsTotal = counter(meter, "bookings_total", "Finalize attempts by outcome", "{booking}")
		m.ChatCompletionsTotal = counter(meter, "chat_completions_total", "Chat completion calls by provider and outcome", "{completion}")
		m.CustomerCapturesTotal = counter(meter, "customer_captures_total", "Customer capture attempts by outcome", "{capture}")
		m.DBQueryDurationSeconds = histogram(meter, "db_query_duration_seconds", "Duration of database queries in seconds")
		m.DBQueryErrorsTotal = counter(meter, "db_query_errors_total", "Total number of database query errors", "{error}")

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it against the current
// MeterProvider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func counter(meter metric.Meter, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return c
}

func histogram(meter metric.Meter, name, desc string) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return h
}
