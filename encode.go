package cgtpool

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// eventLine is a specialized struct to read an event from one JSONL line.
// Amounts and currency arrive as separate fields.
type eventLine struct {
	Kind     string          `json:"kind"`
	ID       string          `json:"id"`
	Date     Date            `json:"date"`
	Asset    string          `json:"asset"`
	Account  string          `json:"account"`
	Quantity Quantity        `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees"`
	Ratio    Quantity        `json:"ratio"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// DecodeEvents decodes a stream of JSONL event data, assigns identities and
// same-day sequence numbers, and returns the events sorted chronologically.
// Events without an explicit id get a generated UUID. The sequence number is
// the line order in the source, which makes same-day tie-breaks reproduce
// the source ledger's insertion order.
func DecodeEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		line++

		var temp eventLine
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, fmt.Errorf("could not decode event on line %d: %w", line, err)
		}
		kind, err := ParseEventKind(temp.Kind)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		e := Event{
			ID:       temp.ID,
			Pool:     PoolKey{Asset: temp.Asset, Account: temp.Account},
			Date:     temp.Date,
			Seq:      line,
			Kind:     kind,
			Quantity: temp.Quantity,
			Price:    M(temp.Price, temp.Currency),
			Fees:     M(temp.Fees, temp.Currency),
			Ratio:    temp.Ratio,
			Amount:   M(temp.Amount, temp.Currency),
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}

	sortEvents(events)
	return events, nil
}

// EncodeEvent marshals a single event to JSON and writes it to the writer,
// followed by a newline, in JSONL format.
func EncodeEvent(w io.Writer, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", e.ID, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event %s: %w", e.ID, err)
	}
	return nil
}

// EncodeEvents reorders events chronologically and persists them to an
// io.Writer in JSONL format. The sort is stable, so same-day events keep
// their sequence order, and field order within each line is canonical.
func EncodeEvents(w io.Writer, events []Event) error {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sortEvents(sorted)

	for _, e := range sorted {
		if err := EncodeEvent(w, e); err != nil {
			return err
		}
	}
	return nil
}
