// Package processor consumes structured events and maintains the derived
// earning_yield table through the yield service. Events are handled one at
// a time and acknowledged only after the corresponding database transaction
// has committed, so a crash mid-event leads to redelivery, never to loss.
package processor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	apperrors "github.com/invest-earning/event-engine/internal/errors"
	"github.com/invest-earning/event-engine/internal/event"
	"github.com/invest-earning/event-engine/internal/model"
	"github.com/invest-earning/event-engine/internal/service"
)

// Processor dispatches events to the yield service.
type Processor struct {
	svc *service.YieldService
	log zerolog.Logger
}

// NewProcessor creates a Processor backed by the given yield service.
func NewProcessor(svc *service.YieldService, log zerolog.Logger) *Processor {
	return &Processor{
		svc: svc,
		log: log.With().Str("component", "processor").Logger(),
	}
}

// Handle processes one delivery. Non-JSON deliveries, undecodable events,
// and events carrying unparseable ids are acknowledged and dropped. Any
// other processing error leaves the event unacknowledged for redelivery.
func (p *Processor) Handle(d amqp.Delivery) {
	if d.ContentType != "application/json" {
		p.log.Debug().Str("content_type", d.ContentType).Msg("dropping non-JSON message")
		p.ack(d)
		return
	}

	ev, err := event.Decode(d.Body)
	if err != nil {
		p.log.Warn().Err(err).Str("body", string(d.Body)).Msg("dropping undecodable event")
		p.ack(d)
		return
	}

	if err := p.Dispatch(ev); err != nil {
		if errors.Is(err, apperrors.ErrMalformedEvent) {
			p.log.Warn().Err(err).Msg("dropping malformed event")
			p.ack(d)
			return
		}
		p.log.Error().Err(err).Str("trigger", string(ev.Trigger)).Msg("failed to process event, leaving for redelivery")
		if err := d.Nack(false, true); err != nil {
			p.log.Error().Err(err).Msg("failed to nack event")
		}
		return
	}

	p.ack(d)
}

// Run consumes deliveries until the channel closes. Events are handled
// strictly one at a time.
func (p *Processor) Run(deliveries <-chan amqp.Delivery) {
	p.log.Info().Msg("processor consuming events")
	for d := range deliveries {
		p.Handle(d)
	}
	p.log.Info().Msg("event channel closed, processor stopping")
}

// Dispatch routes one validated event to the yield service action it calls
// for. Price-scraper events carry no analytic consequence and succeed
// without side effects.
func (p *Processor) Dispatch(ev *event.Event) error {
	switch ev.Trigger {
	case event.TriggerWalletUpdate:
		return p.dispatchUpdate(ev.UpdateInformation)
	case event.TriggerDashboardQuery:
		rebuilt, err := p.svc.Reconcile()
		if err != nil {
			return err
		}
		p.log.Info().Bool("rebuilt", rebuilt).Msg("reconciliation sweep completed")
		return nil
	case event.TriggerPriceScraper:
		p.log.Debug().Str("asset_id", ev.PriceScraperInformation.AssetID).Msg("price scrape noted, nothing to recompute")
		return nil
	}
	return fmt.Errorf("%w: unhandled trigger %q", apperrors.ErrMalformedEvent, ev.Trigger)
}

func (p *Processor) dispatchUpdate(u *event.UpdateInformation) error {
	switch u.Entity {
	case event.EntityEarning:
		id, err := parseNumericID(u.EntityID)
		if err != nil {
			return err
		}
		if u.Operation == event.OperationDeleted {
			return p.svc.DeleteEarning(id)
		}
		return p.svc.SyncEarning(id)

	case event.EntityTransaction:
		if u.Operation == event.OperationDeleted {
			if u.Reference == nil || *u.Reference != event.EntityEarning {
				p.log.Debug().Str("entity_id", u.EntityID).Msg("deleted transaction without earning reference, nothing to recompute")
				return nil
			}
			earningID, err := parseNumericID(u.ReferenceID)
			if err != nil {
				return err
			}
			return p.svc.SyncAssetOfEarning(earningID)
		}
		id, err := parseNumericID(u.EntityID)
		if err != nil {
			return err
		}
		return p.svc.SyncTransaction(id)

	case event.EntityEconomicData:
		year, month, err := parseEconomicID(u.EntityID)
		if err != nil {
			return err
		}
		return p.svc.SyncMonth(year, month)

	case event.EntityAsset:
		if u.Operation == event.OperationDeleted {
			return p.svc.DeleteAsset(u.EntityID)
		}
		// Creating or renaming an asset changes nothing the analytic rows
		// derive from until an earning or transaction event follows.
		return nil
	}
	return fmt.Errorf("%w: unhandled entity %q", apperrors.ErrMalformedEvent, u.Entity)
}

// parseNumericID parses an earning or transaction id.
func parseNumericID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric id %q", apperrors.ErrMalformedEvent, s)
	}
	return id, nil
}

// parseEconomicID splits a composite economic-data id of the form
// <index>_<YYYY>_<MM>_<DD>. The index may itself contain underscores
// (ima_b_5plus), so the date is taken from the right.
func parseEconomicID(s string) (int, time.Month, error) {
	parts := strings.Split(s, "_")
	if len(parts) < 4 {
		return 0, 0, fmt.Errorf("%w: economic_data id %q", apperrors.ErrMalformedEvent, s)
	}

	indexName := strings.Join(parts[:len(parts)-3], "_")
	if _, ok := model.ParseEconomicIndex(indexName); !ok {
		return 0, 0, fmt.Errorf("%w: economic_data id %q: unknown index %q", apperrors.ErrMalformedEvent, s, indexName)
	}

	dateStr := strings.Join(parts[len(parts)-3:], "-")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: economic_data id %q: %v", apperrors.ErrMalformedEvent, s, err)
	}

	return date.Year(), date.Month(), nil
}

func (p *Processor) ack(d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		p.log.Error().Err(err).Msg("failed to ack event")
	}
}
