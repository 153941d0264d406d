// Package guarded decorates ownership lookups with a circuit breaker, a
// short-lived cache for slowly changing assignments, and lookup metrics.
package guarded

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type Config struct {
	// HospitalCacheTTL bounds how long an admin→hospital assignment is reused.
	HospitalCacheTTL time.Duration `mapstructure:"hospital_cache_ttl"`
	BreakerTimeout   time.Duration `mapstructure:"breaker_timeout"`
	// BreakerFailures is the consecutive failure count that opens the breaker.
	BreakerFailures uint32 `mapstructure:"breaker_failures"`
}

func DefaultConfig() Config {
	return Config{
		HospitalCacheTTL: time.Minute,
		BreakerTimeout:   10 * time.Second,
		BreakerFailures:  5,
	}
}

type Ownership struct {
	next    repository.OwnershipRepository
	cb      *gobreaker.CircuitBreaker
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func NewOwnership(next repository.OwnershipRepository, cfg Config, m *metrics.Metrics) *Ownership {
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = DefaultConfig().BreakerFailures
	}
	if cfg.HospitalCacheTTL <= 0 {
		cfg.HospitalCacheTTL = DefaultConfig().HospitalCacheTTL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ownership-lookups",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A miss or an abandoned request says nothing about storage health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, repository.ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &Ownership{
		next:    next,
		cb:      cb,
		cache:   cache.New(cfg.HospitalCacheTTL, 2*cfg.HospitalCacheTTL),
		metrics: m,
	}
}

func (o *Ownership) FindAppointmentOwner(ctx context.Context, appointmentID string) (*model.AppointmentParticipants, error) {
	res, err := o.execute("find_appointment_owner", func() (interface{}, error) {
		return o.next.FindAppointmentOwner(ctx, appointmentID)
	})
	if err != nil {
		return nil, err
	}
	return res.(*model.AppointmentParticipants), nil
}

func (o *Ownership) FindReviewOwner(ctx context.Context, reviewID string) (*model.ReviewOwner, error) {
	res, err := o.execute("find_review_owner", func() (interface{}, error) {
		return o.next.FindReviewOwner(ctx, reviewID)
	})
	if err != nil {
		return nil, err
	}
	return res.(*model.ReviewOwner), nil
}

func (o *Ownership) FindDoctorAssignedPatients(ctx context.Context, doctorID string) ([]string, error) {
	res, err := o.execute("find_doctor_assigned_patients", func() (interface{}, error) {
		return o.next.FindDoctorAssignedPatients(ctx, doctorID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

func (o *Ownership) FindHospitalOfAdmin(ctx context.Context, adminID string) (string, error) {
	if cached, found := o.cache.Get(adminID); found {
		o.observe("find_hospital_of_admin", "cache_hit", 0)
		return cached.(string), nil
	}

	res, err := o.execute("find_hospital_of_admin", func() (interface{}, error) {
		return o.next.FindHospitalOfAdmin(ctx, adminID)
	})
	if err != nil {
		return "", err
	}

	hospitalID := res.(string)
	o.cache.Set(adminID, hospitalID, cache.DefaultExpiration)
	return hospitalID, nil
}

func (o *Ownership) execute(op string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	res, err := o.cb.Execute(fn)

	status := "ok"
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "rejected"
	case err != nil:
		status = "error"
	}
	o.observe(op, status, time.Since(start))
	return res, err
}

func (o *Ownership) observe(op, status string, elapsed time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.LookupOperations.WithLabelValues(op, status).Inc()
	if elapsed > 0 {
		o.metrics.LookupLatency.WithLabelValues(op).Observe(elapsed.Seconds())
	}
}
