package router

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	apperrors "github.com/invest-earning/event-engine/internal/errors"
	"github.com/invest-earning/event-engine/internal/event"
	"github.com/invest-earning/event-engine/internal/heartbeat"
	"github.com/invest-earning/event-engine/internal/testutil"
)

func TestRoute(t *testing.T) {
	t.Run("Parses a wallet update with reference", func(t *testing.T) {
		ev, err := Route("[wallet-api] CREATED earning WITH ID 42 WITH REFERENCE TO asset WITH ID PETR4")
		if err != nil {
			t.Fatalf("Route failed: %v", err)
		}

		u := ev.UpdateInformation
		if ev.Trigger != event.TriggerWalletUpdate || u == nil {
			t.Fatalf("Expected wallet_update event, got %+v", ev)
		}
		if u.Operation != event.OperationCreated || u.Entity != event.EntityEarning || u.EntityID != "42" {
			t.Errorf("Unexpected update fields: %+v", u)
		}
		if u.Reference == nil || *u.Reference != event.EntityAsset || u.ReferenceID != "PETR4" {
			t.Errorf("Unexpected reference fields: %+v", u)
		}
	})

	t.Run("Parses a wallet update without reference", func(t *testing.T) {
		ev, err := Route("[wallet-api] DELETED asset WITH ID HGLG11")
		if err != nil {
			t.Fatalf("Route failed: %v", err)
		}

		u := ev.UpdateInformation
		if u.Operation != event.OperationDeleted || u.Entity != event.EntityAsset || u.EntityID != "HGLG11" {
			t.Errorf("Unexpected update fields: %+v", u)
		}
		if u.Reference != nil || u.ReferenceID != "" {
			t.Errorf("Expected no reference, got %+v", u)
		}
	})

	t.Run("Parses a dashboard query", func(t *testing.T) {
		ev, err := Route("[dashboard] QUERIED GROUP all ON earning_yield")
		if err != nil {
			t.Fatalf("Route failed: %v", err)
		}

		q := ev.QueryInformation
		if ev.Trigger != event.TriggerDashboardQuery || q == nil {
			t.Fatalf("Expected dashboard_query event, got %+v", ev)
		}
		if q.Kind != event.QueryGroup || q.Entity != "all" || q.Table != "earning_yield" {
			t.Errorf("Unexpected query fields: %+v", q)
		}
	})

	t.Run("Parses the heartbeat message", func(t *testing.T) {
		ev, err := Route(heartbeat.Message)
		if err != nil {
			t.Fatalf("Route failed on heartbeat message: %v", err)
		}
		if ev.Trigger != event.TriggerDashboardQuery {
			t.Errorf("Expected dashboard_query event, got %v", ev.Trigger)
		}
	})

	t.Run("Parses a market scraper message", func(t *testing.T) {
		ev, err := Route("[market-scraper] SCRAPPED PRICES FOR asset WITH ID PETR4 BETWEEN 2024-01-01 AND 2024-01-31")
		if err != nil {
			t.Fatalf("Route failed: %v", err)
		}

		p := ev.PriceScraperInformation
		if ev.Trigger != event.TriggerPriceScraper || p == nil {
			t.Fatalf("Expected price_scraper event, got %+v", ev)
		}
		if p.AssetID != "PETR4" {
			t.Errorf("Expected asset PETR4, got %v", p.AssetID)
		}
		if p.StartDate.Format("2006-01-02") != "2024-01-01" || p.EndDate.Format("2006-01-02") != "2024-01-31" {
			t.Errorf("Unexpected date range: %v to %v", p.StartDate, p.EndDate)
		}
	})

	t.Run("Tolerates trailing text after a valid prefix", func(t *testing.T) {
		ev, err := Route("[wallet-api] UPDATED earning WITH ID 7 and then some")
		if err != nil {
			t.Fatalf("Route failed: %v", err)
		}
		if ev.UpdateInformation.EntityID != "7" {
			t.Errorf("Unexpected entity id: %v", ev.UpdateInformation.EntityID)
		}
	})

	t.Run("Rejects a missing envelope", func(t *testing.T) {
		_, err := Route("CREATED earning WITH ID 42")
		if !errors.Is(err, apperrors.ErrMalformedNotification) {
			t.Errorf("Expected malformed notification error, got %v", err)
		}
	})

	t.Run("Rejects an unknown source", func(t *testing.T) {
		_, err := Route("[fx-scraper] SCRAPPED RATES FOR USD")
		if !errors.Is(err, apperrors.ErrUnknownSource) {
			t.Errorf("Expected unknown source error, got %v", err)
		}
	})

	t.Run("Rejects lowercase operations", func(t *testing.T) {
		_, err := Route("[wallet-api] created earning WITH ID 42")
		if !errors.Is(err, apperrors.ErrMalformedNotification) {
			t.Errorf("Expected malformed notification error, got %v", err)
		}
	})

	t.Run("Rejects unknown entities after grammar match", func(t *testing.T) {
		_, err := Route("[wallet-api] CREATED portfolio WITH ID 42")
		if !errors.Is(err, apperrors.ErrMalformedEvent) {
			t.Errorf("Expected malformed event error, got %v", err)
		}
	})

	t.Run("Rejects unparseable scrape dates", func(t *testing.T) {
		_, err := Route("[market-scraper] SCRAPPED PRICES FOR asset WITH ID PETR4 BETWEEN yesterday AND today")
		if !errors.Is(err, apperrors.ErrMalformedNotification) {
			t.Errorf("Expected malformed notification error, got %v", err)
		}
	})
}

func TestHandle(t *testing.T) {
	t.Run("Publishes event then acks", func(t *testing.T) {
		pub := &testutil.FakePublisher{}
		r := NewRouter(pub, "yoc_events", zerolog.Nop())

		d, ack := testutil.NewDelivery("text/plain", []byte("[wallet-api] CREATED earning WITH ID 42"))
		r.Handle(d)

		if len(pub.Messages) != 1 {
			t.Fatalf("Expected 1 published message, got %d", len(pub.Messages))
		}
		msg := pub.Messages[0]
		if msg.Queue != "yoc_events" || msg.ContentType != "application/json" {
			t.Errorf("Unexpected publish target: %+v", msg)
		}
		if _, err := event.Decode(msg.Body); err != nil {
			t.Errorf("Published body does not decode: %v", err)
		}
		if !ack.Acked {
			t.Error("Expected delivery to be acked after publish")
		}
	})

	t.Run("Acks and drops non-text messages", func(t *testing.T) {
		pub := &testutil.FakePublisher{}
		r := NewRouter(pub, "yoc_events", zerolog.Nop())

		d, ack := testutil.NewDelivery("application/json", []byte(`{"trigger":"wallet_update"}`))
		r.Handle(d)

		if len(pub.Messages) != 0 {
			t.Errorf("Expected no publishes, got %d", len(pub.Messages))
		}
		if !ack.Acked {
			t.Error("Expected non-text delivery to be acked")
		}
	})

	t.Run("Acks and drops malformed notifications", func(t *testing.T) {
		pub := &testutil.FakePublisher{}
		r := NewRouter(pub, "yoc_events", zerolog.Nop())

		d, ack := testutil.NewDelivery("text/plain", []byte("not a notification"))
		r.Handle(d)

		if len(pub.Messages) != 0 {
			t.Errorf("Expected no publishes, got %d", len(pub.Messages))
		}
		if !ack.Acked {
			t.Error("Expected malformed delivery to be acked")
		}
	})

	t.Run("Leaves notification for redelivery when publish fails", func(t *testing.T) {
		pub := &testutil.FakePublisher{Err: errors.New("broker unavailable")}
		r := NewRouter(pub, "yoc_events", zerolog.Nop())

		d, ack := testutil.NewDelivery("text/plain", []byte("[wallet-api] CREATED earning WITH ID 42"))
		r.Handle(d)

		if ack.Acked {
			t.Error("Expected delivery not to be acked on publish failure")
		}
		if !ack.Nacked || !ack.Requeued {
			t.Error("Expected delivery to be nacked with requeue")
		}
	})
}
