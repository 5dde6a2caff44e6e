// Package router consumes plain-text notifications from upstream services,
// parses them against per-source grammars, and publishes structured JSON
// events for the processor. The router holds no state and touches no
// database; it is a pure translation step between the two queues.
package router

import (
	"fmt"
	"regexp"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/invest-earning/event-engine/internal/broker"
	apperrors "github.com/invest-earning/event-engine/internal/errors"
	"github.com/invest-earning/event-engine/internal/event"
)

// Notification sources with a known grammar.
const (
	SourceWalletAPI     = "wallet-api"
	SourceDashboard     = "dashboard"
	SourceMarketScraper = "market-scraper"
)

// Grammars are case-exact and anchored at the start only, so trailing text
// after a valid prefix is tolerated.
var (
	envelopePattern      = regexp.MustCompile(`^\[([^\[\]]+)\] (.*)$`)
	walletUpdatePattern  = regexp.MustCompile(`^(CREATED|UPDATED|DELETED) (\w+) WITH ID (\w+)(?: WITH REFERENCE TO (\w+) WITH ID (\w+))?`)
	dashboardPattern     = regexp.MustCompile(`^QUERIED (ASSET|GROUP) (\w+) ON (\w+)`)
	marketScraperPattern = regexp.MustCompile(`^SCRAPPED PRICES FOR asset WITH ID (\w+) BETWEEN (.+) AND (.+)`)
)

// Router translates notifications into events and forwards them.
type Router struct {
	pub      broker.Publisher
	yocQueue string
	log      zerolog.Logger
}

// NewRouter creates a Router publishing structured events to yocQueue.
func NewRouter(pub broker.Publisher, yocQueue string, log zerolog.Logger) *Router {
	return &Router{
		pub:      pub,
		yocQueue: yocQueue,
		log:      log.With().Str("component", "router").Logger(),
	}
}

// Route parses one notification body into a validated event.
//
// Returns apperrors.ErrMalformedNotification when the envelope or the
// source grammar does not match, apperrors.ErrUnknownSource when the source
// has no grammar, and apperrors.ErrMalformedEvent when the extracted fields
// fail event validation. All three are drop conditions, never retried.
func Route(body string) (*event.Event, error) {
	m := envelopePattern.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("%w: no [source] envelope in %q", apperrors.ErrMalformedNotification, body)
	}
	source, message := m[1], m[2]

	var ev *event.Event
	var err error
	switch source {
	case SourceWalletAPI:
		ev, err = routeWalletUpdate(message)
	case SourceDashboard:
		ev, err = routeDashboardQuery(message)
	case SourceMarketScraper:
		ev, err = routePriceScraper(message)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownSource, source)
	}
	if err != nil {
		return nil, err
	}

	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	return ev, nil
}

func routeWalletUpdate(message string) (*event.Event, error) {
	m := walletUpdatePattern.FindStringSubmatch(message)
	if m == nil {
		return nil, fmt.Errorf("%w: wallet-api message %q", apperrors.ErrMalformedNotification, message)
	}

	update := &event.UpdateInformation{
		Operation: event.Operation(m[1]),
		Entity:    event.Entity(m[2]),
		EntityID:  m[3],
	}
	if m[4] != "" {
		ref := event.Entity(m[4])
		update.Reference = &ref
		update.ReferenceID = m[5]
	}

	return &event.Event{
		Trigger:           event.TriggerWalletUpdate,
		UpdateInformation: update,
	}, nil
}

func routeDashboardQuery(message string) (*event.Event, error) {
	m := dashboardPattern.FindStringSubmatch(message)
	if m == nil {
		return nil, fmt.Errorf("%w: dashboard message %q", apperrors.ErrMalformedNotification, message)
	}

	return &event.Event{
		Trigger: event.TriggerDashboardQuery,
		QueryInformation: &event.QueryInformation{
			Kind:   event.QueryKind(m[1]),
			Entity: m[2],
			Table:  m[3],
		},
	}, nil
}

func routePriceScraper(message string) (*event.Event, error) {
	m := marketScraperPattern.FindStringSubmatch(message)
	if m == nil {
		return nil, fmt.Errorf("%w: market-scraper message %q", apperrors.ErrMalformedNotification, message)
	}

	start, err := event.ParseDate(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedNotification, err)
	}
	end, err := event.ParseDate(m[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedNotification, err)
	}

	return &event.Event{
		Trigger: event.TriggerPriceScraper,
		PriceScraperInformation: &event.PriceScraperInformation{
			AssetID:   m[1],
			StartDate: start,
			EndDate:   end,
		},
	}, nil
}

// Handle processes one delivery end to end. Non-text deliveries and
// unparseable notifications are acknowledged and dropped. A parsed event is
// published first and the source message acknowledged only afterwards, so a
// broker failure leaves the notification queued for redelivery.
func (r *Router) Handle(d amqp.Delivery) {
	if d.ContentType != "text/plain" {
		r.log.Debug().Str("content_type", d.ContentType).Msg("dropping non-text message")
		r.ack(d)
		return
	}

	ev, err := Route(string(d.Body))
	if err != nil {
		r.log.Warn().Err(err).Str("body", string(d.Body)).Msg("dropping unroutable notification")
		r.ack(d)
		return
	}

	body, err := ev.Encode()
	if err != nil {
		r.log.Warn().Err(err).Msg("dropping unencodable event")
		r.ack(d)
		return
	}

	if err := r.pub.Publish(r.yocQueue, "application/json", body); err != nil {
		r.log.Error().Err(err).Msg("failed to publish event, leaving notification for redelivery")
		if err := d.Nack(false, true); err != nil {
			r.log.Error().Err(err).Msg("failed to nack notification")
		}
		return
	}

	r.log.Info().Str("trigger", string(ev.Trigger)).Msg("routed notification")
	r.ack(d)
}

// Run consumes deliveries until the channel closes. Messages are handled
// strictly one at a time.
func (r *Router) Run(deliveries <-chan amqp.Delivery) {
	r.log.Info().Msg("router consuming notifications")
	for d := range deliveries {
		r.Handle(d)
	}
	r.log.Info().Msg("notification channel closed, router stopping")
}

func (r *Router) ack(d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		r.log.Error().Err(err).Msg("failed to ack notification")
	}
}
