package booking

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/metinatakli/movie-booking-service/internal/booking"

type metrics struct {
	created            metric.Int64Counter
	seatConflicts      metric.Int64Counter
	capacityRejections metric.Int64Counter
	cancelled          metric.Int64Counter
	paymentResults     metric.Int64Counter
	expired            metric.Int64Counter
	retries            metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	var (
		m   metrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.created, "booking.created", "Bookings created"},
		{&m.seatConflicts, "booking.seat_conflicts", "Booking requests rejected because a seat was taken"},
		{&m.capacityRejections, "booking.capacity_rejections", "Booking requests rejected for lack of capacity"},
		{&m.cancelled, "booking.cancelled", "Bookings cancelled"},
		{&m.paymentResults, "booking.payment_results", "Payment results applied to bookings"},
		{&m.expired, "booking.expired", "Pending bookings expired by the sweeper"},
		{&m.retries, "booking.tx_retries", "Booking transactions retried after a transient failure"},
	}

	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	return &m, nil
}

func mustMetrics() *metrics {
	m, err := newMetrics(otel.Meter(instrumentationName))
	if err != nil {
		m, _ = newMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	}

	return m
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
