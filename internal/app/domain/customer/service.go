package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/app/observability/metrics"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

const (
	placeholderName = "—"

	reasonNotConfigured = "MailerLite not configured"
	reasonFailed        = "MailerLite request failed"
	reasonServerError   = "Server error"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Capture adds the customer to the mailing list. Only an invalid email
	// is an error; every other outcome is reported in the result.
	Capture(ctx context.Context, in models.CustomerCapture) (models.CaptureResult, error)
}

type ServiceImpl struct {
	client   ListClient
	cfg      config.MailerLiteConfig
	validate *validator.Validate
	lower    cases.Caser
	logger   *zap.Logger
}

func NewService(client ListClient, cfg config.MailerLiteConfig, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		client:   client,
		cfg:      cfg,
		validate: validator.New(),
		lower:    cases.Lower(language.Und),
		logger:   logger,
	}
}

func (s *ServiceImpl) Capture(ctx context.Context, in models.CustomerCapture) (models.CaptureResult, error) {
	ctx, span := otel.Tracer("CustomerService").Start(ctx, "Capture")
	defer span.End()

	l := s.logger.With(zap.String("method", "Capture"))

	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return models.CaptureResult{}, models.Invalid("Valid email is required")
	}

	if !s.client.Configured() {
		s.count(ctx, "not_configured")
		return models.CaptureResult{Saved: false, Reason: reasonNotConfigured}, nil
	}

	sub := s.subscriber(in)
	if err := s.client.Upsert(ctx, sub); err != nil {
		span.RecordError(err)
		var se *StatusError
		switch {
		case errors.As(err, &se), errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			l.Error("MailerLite rejected subscriber", zap.Error(err))
			s.count(ctx, "failed")
			return models.CaptureResult{Saved: false, Reason: reasonFailed}, nil
		default:
			l.Error("Customer capture failed", zap.Error(err))
			s.count(ctx, "error")
			return models.CaptureResult{Saved: false, Reason: reasonServerError}, nil
		}
	}

	s.count(ctx, "saved")
	return models.CaptureResult{Saved: true}, nil
}

func (s *ServiceImpl) subscriber(in models.CustomerCapture) Subscriber {
	fields := map[string]string{
		"name":      orPlaceholder(in.FirstName),
		"last_name": orPlaceholder(in.LastName),
	}
	setIfPresent(fields, "phone", in.Phone)
	if s.cfg.SaveInterests {
		setIfPresent(fields, "last_hotel_id", in.HotelID)
		setIfPresent(fields, "last_checkin", in.Checkin)
		setIfPresent(fields, "last_checkout", in.Checkout)
	}
	sub := Subscriber{Email: s.lower.String(in.Email), Fields: fields}
	if s.cfg.GroupID != "" {
		sub.Groups = []string{s.cfg.GroupID}
	}
	return sub
}

func (s *ServiceImpl) count(ctx context.Context, outcome string) {
	metrics.Get().CustomerCapturesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func orPlaceholder(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return placeholderName
}

func setIfPresent(fields map[string]string, key, v string) {
	if v = strings.TrimSpace(v); v != "" {
		fields[key] = v
	}
}
