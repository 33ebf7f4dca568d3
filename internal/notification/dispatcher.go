package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
	"github.com/cloudcitycakeco/cakeorders/internal/storage"
)

const tracerName = "github.com/cloudcitycakeco/cakeorders/internal/notification"

// DefaultSendTimeout bounds a single send when no channel timeout is configured.
const DefaultSendTimeout = 10 * time.Second

// Outcome is the result of one rule during a dispatch.
type Outcome string

// Dispatch outcomes.
const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Skip reasons.
const (
	ReasonMissingContact     = "missing contact"
	ReasonPhoneNotVerified   = "phone not verified"
	ReasonChannelUnavailable = "channel not configured"
)

// Result reports what happened to one matched rule.
type Result struct {
	DispatchID string        `json:"dispatch_id"`
	Rule       string        `json:"rule"`
	Channel    Channel       `json:"channel"`
	Recipient  string        `json:"recipient,omitempty"`
	Outcome    Outcome       `json:"outcome"`
	Reason     string        `json:"reason,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// Recorder receives every dispatch result, typically to update metrics.
type Recorder interface {
	RecordResult(r Result)
}

// DispatcherConfig holds the collaborators of a Dispatcher. Only Rules is
// required; a nil sender disables its channels.
type DispatcherConfig struct {
	Rules          *RuleSet
	Email          EmailSender
	SMS            SMSSender
	Timeouts       map[Channel]time.Duration
	DefaultTimeout time.Duration
	Store          storage.NotificationStore
	Recorder       Recorder
	Logger         *slog.Logger
	Tracer         trace.Tracer
}

// Dispatcher evaluates the rule set for a status transition and delivers the
// resulting notifications. It holds no mutable state and is safe for
// concurrent use.
type Dispatcher struct {
	rules          *RuleSet
	email          EmailSender
	sms            SMSSender
	timeouts       map[Channel]time.Duration
	defaultTimeout time.Duration
	store          storage.NotificationStore
	recorder       Recorder
	logger         *slog.Logger
	tracer         trace.Tracer
}

// NewDispatcher returns a Dispatcher built from cfg.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Rules == nil {
		return nil, fmt.Errorf("dispatcher: rule set is required")
	}
	d := &Dispatcher{
		rules:          cfg.Rules,
		email:          cfg.Email,
		sms:            cfg.SMS,
		timeouts:       make(map[Channel]time.Duration, len(cfg.Timeouts)),
		defaultTimeout: cfg.DefaultTimeout,
		store:          cfg.Store,
		recorder:       cfg.Recorder,
		logger:         cfg.Logger,
		tracer:         cfg.Tracer,
	}
	for c, t := range cfg.Timeouts {
		d.timeouts[c] = t
	}
	if d.defaultTimeout <= 0 {
		d.defaultTimeout = DefaultSendTimeout
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	return d, nil
}

// Dispatch evaluates every rule against t and sends the notifications of the
// matching ones concurrently. Results are returned in rule registration
// order. Dispatch never fails: transport errors, render errors and panics
// are reported as failed results.
//
// Sends are detached from ctx cancellation so a committed transition still
// notifies after the caller goes away; each send is bounded by its channel
// timeout instead.
func (d *Dispatcher) Dispatch(ctx context.Context, t order.Transition) []Result {
	matched := d.rules.Match(t)
	if len(matched) == 0 {
		return []Result{}
	}

	dispatchID := uuid.New().String()
	ctx = context.WithoutCancel(ctx)
	ctx, span := d.tracer.Start(ctx, "notification.Dispatch", trace.WithAttributes(
		attribute.String("dispatch.id", dispatchID),
		attribute.Int64("order.id", t.Order.ID),
		attribute.String("order.status.from", string(t.From)),
		attribute.String("order.status.to", string(t.To)),
		attribute.Int("rules.matched", len(matched)),
	))
	defer span.End()

	results := make([]Result, len(matched))
	var wg sync.WaitGroup
	for i, r := range matched {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.deliver(ctx, r, t)
			results[i].DispatchID = dispatchID
		}()
	}
	wg.Wait()

	for _, res := range results {
		d.observe(ctx, t, res)
		if res.Outcome == OutcomeFailed {
			span.SetStatus(codes.Error, "one or more notifications failed")
		}
	}
	return results
}

// deliver runs a single matched rule. It recovers from panics raised by the
// rule's builder or by the transport.
func (d *Dispatcher) deliver(ctx context.Context, r Rule, t order.Transition) (res Result) {
	start := time.Now()
	res = Result{Rule: r.Name, Channel: r.Channel}

	ctx, span := d.tracer.Start(ctx, "notification.send", trace.WithAttributes(
		attribute.String("rule", r.Name),
		attribute.String("channel", string(r.Channel)),
	))
	defer func() {
		if p := recover(); p != nil {
			res.Outcome = OutcomeFailed
			res.Reason = fmt.Sprintf("panic: %v", p)
		}
		res.Duration = time.Since(start)
		span.SetAttributes(attribute.String("outcome", string(res.Outcome)))
		if res.Outcome == OutcomeFailed {
			span.SetStatus(codes.Error, res.Reason)
		}
		span.End()
	}()

	res.Recipient = Recipient(r.Channel, t.Order.Contact)
	if res.Recipient == "" {
		res.Outcome, res.Reason = OutcomeSkipped, ReasonMissingContact
		return res
	}
	if r.Channel == ChannelVerifiedSMS && !t.Order.Contact.PhoneVerified {
		res.Outcome, res.Reason = OutcomeSkipped, ReasonPhoneNotVerified
		return res
	}
	if !d.hasTransport(r.Channel) {
		res.Outcome, res.Reason = OutcomeSkipped, ReasonChannelUnavailable
		return res
	}

	intent, err := r.BuildMessage(t)
	if err != nil {
		res.Outcome, res.Reason = OutcomeFailed, err.Error()
		return res
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeoutFor(r.Channel))
	defer cancel()
	if err := d.send(sendCtx, intent); err != nil {
		res.Outcome, res.Reason = OutcomeFailed, err.Error()
		span.RecordError(err)
		return res
	}
	res.Outcome = OutcomeSent
	return res
}

func (d *Dispatcher) hasTransport(c Channel) bool {
	switch c {
	case ChannelEmail:
		return d.email != nil
	case ChannelSMS, ChannelVerifiedSMS:
		return d.sms != nil
	}
	return false
}

func (d *Dispatcher) send(ctx context.Context, in Intent) error {
	switch in.Channel {
	case ChannelEmail:
		return d.email.SendEmail(ctx, in.Recipient, in.Subject, in.Body)
	case ChannelSMS, ChannelVerifiedSMS:
		return d.sms.SendSMS(ctx, in.Recipient, in.Body)
	}
	return fmt.Errorf("unsupported channel %q", in.Channel)
}

func (d *Dispatcher) timeoutFor(c Channel) time.Duration {
	if t, ok := d.timeouts[c]; ok && t > 0 {
		return t
	}
	return d.defaultTimeout
}

// observe logs, persists and records one result. Failures here are logged
// and otherwise ignored.
func (d *Dispatcher) observe(ctx context.Context, t order.Transition, res Result) {
	attrs := []any{
		"dispatch_id", res.DispatchID,
		"order_id", t.Order.ID,
		"rule", res.Rule,
		"channel", string(res.Channel),
		"outcome", string(res.Outcome),
		"duration", res.Duration,
	}
	switch res.Outcome {
	case OutcomeFailed:
		d.logger.Error("notification failed", append(attrs, "reason", res.Reason)...)
	case OutcomeSkipped:
		d.logger.Info("notification skipped", append(attrs, "reason", res.Reason)...)
	default:
		d.logger.Info("notification sent", attrs...)
	}

	if d.recorder != nil {
		d.recorder.RecordResult(res)
	}

	if d.store == nil {
		return
	}
	entry := storage.NotificationLogEntry{
		DispatchID: res.DispatchID,
		OrderID:    t.Order.ID,
		Rule:       res.Rule,
		Channel:    string(res.Channel),
		Recipient:  res.Recipient,
		Status:     string(res.Outcome),
		ErrorMsg:   res.Reason,
		CreatedAt:  time.Now(),
	}
	if err := d.store.LogNotification(ctx, entry); err != nil {
		d.logger.Warn("failed to record notification", "dispatch_id", res.DispatchID, "rule", res.Rule, "error", err)
	}
}
