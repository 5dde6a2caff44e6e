// Package event defines the structured analytic event exchanged between the
// notification router and the YoC processor. The schema is closed: every
// symbolic field draws from a fixed value set, unknown JSON fields are
// rejected, and exactly the payload matching the trigger must be present.
package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/invest-earning/event-engine/internal/errors"
)

// Trigger identifies which upstream system produced an event.
type Trigger string

// Known event triggers.
const (
	TriggerWalletUpdate   Trigger = "wallet_update"
	TriggerDashboardQuery Trigger = "dashboard_query"
	TriggerPriceScraper   Trigger = "price_scraper"
)

// Valid reports whether t is one of the known triggers.
func (t Trigger) Valid() bool {
	switch t {
	case TriggerWalletUpdate, TriggerDashboardQuery, TriggerPriceScraper:
		return true
	}
	return false
}

// Entity names a wallet-store entity affected by an update event.
type Entity string

// Wallet entities carried by update events.
const (
	EntityAsset        Entity = "asset"
	EntityEarning      Entity = "earning"
	EntityTransaction  Entity = "transaction"
	EntityEconomicData Entity = "economic_data"
)

// Valid reports whether e is one of the known wallet entities.
func (e Entity) Valid() bool {
	switch e {
	case EntityAsset, EntityEarning, EntityTransaction, EntityEconomicData:
		return true
	}
	return false
}

// Operation is the database operation an update event describes.
type Operation string

// Database operations carried by update events.
const (
	OperationCreated Operation = "CREATED"
	OperationUpdated Operation = "UPDATED"
	OperationDeleted Operation = "DELETED"
)

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreated, OperationUpdated, OperationDeleted:
		return true
	}
	return false
}

// QueryKind distinguishes dashboard queries over a single asset from
// queries over an asset group.
type QueryKind string

// Dashboard query kinds.
const (
	QueryAsset QueryKind = "ASSET"
	QueryGroup QueryKind = "GROUP"
)

// Valid reports whether k is one of the known query kinds.
func (k QueryKind) Valid() bool {
	return k == QueryAsset || k == QueryGroup
}

// UpdateInformation describes a wallet-store write. Reference/ReferenceID
// optionally name a second entity the write relates to (e.g. the earning a
// deleted transaction was entitled to).
type UpdateInformation struct {
	Entity      Entity    `json:"entity"`
	Operation   Operation `json:"operation"`
	EntityID    string    `json:"entity_id"`
	Reference   *Entity   `json:"reference"`
	ReferenceID string    `json:"reference_id"`
}

func (u UpdateInformation) validate() error {
	if !u.Entity.Valid() {
		return fmt.Errorf("invalid entity %q", u.Entity)
	}
	if !u.Operation.Valid() {
		return fmt.Errorf("invalid operation %q", u.Operation)
	}
	if u.EntityID == "" {
		return fmt.Errorf("missing entity_id")
	}
	if u.Reference != nil {
		if !u.Reference.Valid() {
			return fmt.Errorf("invalid reference %q", *u.Reference)
		}
		if u.ReferenceID == "" {
			return fmt.Errorf("missing reference_id for reference %q", *u.Reference)
		}
	} else if u.ReferenceID != "" {
		return fmt.Errorf("reference_id %q without reference", u.ReferenceID)
	}
	return nil
}

// QueryInformation describes a dashboard read of an analytic table.
type QueryInformation struct {
	Kind   QueryKind `json:"kind"`
	Entity string    `json:"entity"`
	Table  string    `json:"table"`
}

func (q QueryInformation) validate() error {
	if !q.Kind.Valid() {
		return fmt.Errorf("invalid query kind %q", q.Kind)
	}
	if q.Entity == "" {
		return fmt.Errorf("missing query entity")
	}
	if q.Table == "" {
		return fmt.Errorf("missing query table")
	}
	return nil
}

// PriceScraperInformation describes a completed market-price scrape.
type PriceScraperInformation struct {
	AssetID   string `json:"asset_id"`
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
}

func (p PriceScraperInformation) validate() error {
	if p.AssetID == "" {
		return fmt.Errorf("missing asset_id")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("missing scrape date range")
	}
	if p.EndDate.Before(p.StartDate.Time) {
		return fmt.Errorf("scrape end date before start date")
	}
	return nil
}

// Event is one structured analytic event. Exactly the payload matching
// Trigger is populated; the other payloads are nil (or empty objects when
// decoded from a producer that serializes them explicitly).
type Event struct {
	Trigger                 Trigger                  `json:"trigger"`
	UpdateInformation       *UpdateInformation       `json:"update_information,omitempty"`
	QueryInformation        *QueryInformation        `json:"query_information,omitempty"`
	PriceScraperInformation *PriceScraperInformation `json:"price_scraper_information,omitempty"`
}

// Decode parses and validates an event from its JSON encoding. Unknown
// fields anywhere in the document are rejected. Any failure is reported as
// a malformed-event error, which consumers acknowledge and drop.
func Decode(data []byte) (*Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var ev Event
	if err := dec.Decode(&ev); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	return &ev, nil
}

// Encode serializes the event as JSON.
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Validate checks the trigger, requires the matching payload to be present
// and well formed, and requires the remaining payloads to be absent or
// empty.
func (e *Event) Validate() error {
	if !e.Trigger.Valid() {
		return fmt.Errorf("invalid trigger %q", e.Trigger)
	}

	update := e.UpdateInformation != nil && *e.UpdateInformation != (UpdateInformation{})
	query := e.QueryInformation != nil && *e.QueryInformation != (QueryInformation{})
	scrape := e.PriceScraperInformation != nil && *e.PriceScraperInformation != (PriceScraperInformation{})

	switch e.Trigger {
	case TriggerWalletUpdate:
		if !update {
			return fmt.Errorf("wallet_update event without update_information")
		}
		if query || scrape {
			return fmt.Errorf("wallet_update event with extra payloads")
		}
		return e.UpdateInformation.validate()
	case TriggerDashboardQuery:
		if !query {
			return fmt.Errorf("dashboard_query event without query_information")
		}
		if update || scrape {
			return fmt.Errorf("dashboard_query event with extra payloads")
		}
		return e.QueryInformation.validate()
	case TriggerPriceScraper:
		if !scrape {
			return fmt.Errorf("price_scraper event without price_scraper_information")
		}
		if update || query {
			return fmt.Errorf("price_scraper event with extra payloads")
		}
		return e.PriceScraperInformation.validate()
	}
	return nil
}
