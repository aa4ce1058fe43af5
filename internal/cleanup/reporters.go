package cleanup

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/testimonial-hub/backend/internal/awsclient"
	"github.com/testimonial-hub/backend/internal/events"
	"github.com/testimonial-hub/backend/internal/lifecycle"
)

// CloudWatchReporter emits sweep counters as custom metrics.
type CloudWatchReporter struct {
	client    awsclient.CloudWatchAPI
	namespace string
}

func NewCloudWatchReporter(client awsclient.CloudWatchAPI, namespace string) *CloudWatchReporter {
	return &CloudWatchReporter{client: client, namespace: namespace}
}

func (r *CloudWatchReporter) Name() string { return "cloudwatch" }

func (r *CloudWatchReporter) Report(ctx context.Context, at time.Time, res lifecycle.SweepResult) error {
	datum := func(name, category string, value int) cwtypes.MetricDatum {
		d := cwtypes.MetricDatum{
			MetricName: sdkaws.String(name),
			Timestamp:  sdkaws.Time(at),
			Unit:       cwtypes.StandardUnitCount,
			Value:      sdkaws.Float64(float64(value)),
		}
		if category != "" {
			d.Dimensions = []cwtypes.Dimension{{Name: sdkaws.String("Category"), Value: sdkaws.String(category)}}
		}
		return d
	}

	data := []cwtypes.MetricDatum{
		datum("TestimonialsDeleted", "", res.DeletedCount),
		datum("TestimonialsExpired", string(lifecycle.CategoryPendingTimeout), res.PendingExpired),
		datum("TestimonialsExpired", string(lifecycle.CategoryApprovedExpired), res.ApprovedExpired),
		datum("TestimonialsExpired", string(lifecycle.CategoryRejectedExpired), res.RejectedExpired),
	}
	byKind := map[string]int{}
	for _, f := range res.Failures {
		byKind[f.Kind]++
	}
	for kind, n := range byKind {
		data = append(data, datum("TestimonialSweepFailures", kind, n))
	}

	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(r.namespace),
		MetricData: data,
	})
	if err != nil {
		if code := awsclient.ErrorCode(err); code != "" {
			return fmt.Errorf("put metric data (%s): %w", code, err)
		}
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

// EventReporter publishes a cleanup_completed event on the system stream.
type EventReporter struct {
	publisher events.Publisher
}

func NewEventReporter(publisher events.Publisher) *EventReporter {
	return &EventReporter{publisher: publisher}
}

func (r *EventReporter) Name() string { return "events" }

func (r *EventReporter) Report(ctx context.Context, at time.Time, res lifecycle.SweepResult) error {
	return r.publisher.Publish(ctx, events.StreamSystem, events.Event{
		Type: events.EventCleanupCompleted,
		Payload: map[string]any{
			"at":               at.Format(time.RFC3339),
			"deleted_count":    res.DeletedCount,
			"pending_expired":  res.PendingExpired,
			"approved_expired": res.ApprovedExpired,
			"rejected_expired": res.RejectedExpired,
			"failures":         len(res.Failures),
		},
	})
}
