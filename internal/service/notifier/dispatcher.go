package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	"github.com/jeevanrakshak/donor-api/pkg/logger"
	"github.com/jeevanrakshak/donor-api/pkg/messaging"
	"github.com/jeevanrakshak/donor-api/pkg/metrics"
	"github.com/jeevanrakshak/donor-api/pkg/push"
)

// Dispatcher consumes request_created events and fans notifications out to
// every available donor in the request's region. Delivery is best-effort:
// failures are logged and counted, never surfaced back to the request flow.
type Dispatcher struct {
	donors  repository.DonorRepository
	gateway push.Gateway
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(
	donors repository.DonorRepository,
	gateway push.Gateway,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		donors:  donors,
		gateway: gateway,
		logger:  logger,
		metrics: metrics,
	}
}

// Run subscribes to the request_created channel and dispatches until ctx is
// cancelled.
func (d *Dispatcher) Run(ctx context.Context, broker messaging.Broker) error {
	messages, err := broker.Subscribe(ctx, model.EventRequestCreated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.EventRequestCreated, err)
	}

	d.logger.Info("Notification dispatcher started", "channel", model.EventRequestCreated)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Shutting down notification dispatcher")
			return nil
		case payload, ok := <-messages:
			if !ok {
				d.logger.Warn("Broker subscription closed")
				return nil
			}
			if err := d.HandleRequestCreated(ctx, payload); err != nil {
				d.logger.Error(err, "Failed to handle request_created event")
			}
		}
	}
}

// HandleRequestCreated delivers one request's fan-out. It never returns an
// error for delivery problems; the request is already committed and a failed
// notification batch must not fail the event.
func (d *Dispatcher) HandleRequestCreated(ctx context.Context, payload []byte) error {
	var event model.RequestCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		d.metrics.FanoutSkipped.WithLabelValues("bad_payload").Inc()
		return fmt.Errorf("failed to decode request_created payload: %w", err)
	}

	if event.Region == "" {
		d.logger.Warn("Request has no region, skipping fan-out",
			"request_id", event.RequestID.String())
		d.metrics.FanoutSkipped.WithLabelValues("missing_region").Inc()
		return nil
	}

	timer := prometheus.NewTimer(d.metrics.FanoutLatency)
	defer timer.ObserveDuration()

	donors, err := d.donors.Search(ctx, model.DonorFilter{Region: event.Region})
	if err != nil {
		d.metrics.NotificationsFailed.Inc()
		d.logger.Error(err, "Failed to find donors for fan-out",
			"request_id", event.RequestID.String(),
			"region", event.Region)
		return nil
	}
	if len(donors) == 0 {
		d.metrics.FanoutSkipped.WithLabelValues("no_donors").Inc()
		return nil
	}

	donorIDs := make([]uuid.UUID, 0, len(donors))
	for _, donor := range donors {
		donorIDs = append(donorIDs, donor.ID)
	}

	tokens, err := d.donors.Tokens(ctx, donorIDs)
	if err != nil {
		d.metrics.NotificationsFailed.Inc()
		d.logger.Error(err, "Failed to load donor tokens",
			"request_id", event.RequestID.String())
		return nil
	}
	if len(tokens) == 0 {
		d.metrics.FanoutSkipped.WithLabelValues("no_tokens").Inc()
		return nil
	}

	notification := push.Payload{
		Title: fmt.Sprintf("New Blood Request: %s", event.BloodGroup),
		Body: fmt.Sprintf(
			"A new request for %s blood has been posted in %s. Tap to view.",
			event.BloodGroup, event.Region,
		),
	}

	result, err := d.gateway.Send(ctx, tokens, notification)
	if err != nil {
		d.metrics.NotificationsFailed.Inc()
		d.logger.Error(err, "Push delivery failed",
			"request_id", event.RequestID.String(),
			"tokens", len(tokens))
		return nil
	}

	d.metrics.NotificationsSent.Add(float64(result.SuccessCount))
	if result.FailureCount > 0 {
		d.metrics.NotificationsFailed.Add(float64(result.FailureCount))
	}

	d.logger.Info("Fan-out complete",
		"request_id", event.RequestID.String(),
		"region", event.Region,
		"sent", result.SuccessCount,
		"failed", result.FailureCount)
	return nil
}
