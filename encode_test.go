package cgtpool

import (
	"strings"
	"testing"
)

const sampleEvents = `{"kind":"disposal","id":"d1","date":"2023-07-01","asset":"WIDGET","account":"ISA","quantity":5,"price":52,"currency":"GBP"}
{"kind":"acquisition","date":"2023-05-01","asset":"WIDGET","account":"ISA","quantity":10,"price":50,"fees":3,"currency":"GBP"}

{"kind":"split","id":"s1","date":"2023-08-01","asset":"WIDGET","account":"ISA","ratio":2}
{"kind":"income","id":"i1","date":"2023-09-01","asset":"WIDGET","account":"ISA","amount":35,"currency":"GBP"}
`

func TestDecodeEvents(t *testing.T) {
	events, err := DecodeEvents(strings.NewReader(sampleEvents))
	if err != nil {
		t.Fatalf("DecodeEvents() error = %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}

	// Events come back sorted chronologically, not in line order.
	if events[0].Kind != KindAcquisition || events[0].Date != MustParseDate("2023-05-01") {
		t.Errorf("first event = %s on %s, want the 2023-05-01 acquisition", events[0].Kind, events[0].Date)
	}
	if events[1].ID != "d1" || events[1].Kind != KindDisposal {
		t.Errorf("second event = %q %s, want disposal d1", events[1].ID, events[1].Kind)
	}

	buy := events[0]
	if buy.ID == "" {
		t.Error("acquisition without an id did not get one assigned")
	}
	if buy.Pool != (PoolKey{Asset: "WIDGET", Account: "ISA"}) {
		t.Errorf("pool = %s, want WIDGET@ISA", buy.Pool)
	}
	if !buy.Quantity.Equal(Q(10)) || !buy.Price.Equal(M(50, "GBP")) || !buy.Fees.Equal(M(3, "GBP")) {
		t.Errorf("acquisition = %s @ %s + %s, want 10 @ £50.00 + £3.00", buy.Quantity, buy.Price, buy.Fees)
	}
	if !events[2].Ratio.Equal(Q(2)) {
		t.Errorf("split ratio = %s, want 2", events[2].Ratio)
	}
	if !events[3].Amount.Equal(M(35, "GBP")) {
		t.Errorf("income amount = %s, want 35", events[3].Amount)
	}
}

func TestDecodeEventsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown kind", `{"kind":"transfer","date":"2023-05-01","asset":"WIDGET","quantity":10,"price":50}`},
		{"zero quantity", `{"kind":"acquisition","date":"2023-05-01","asset":"WIDGET","quantity":0,"price":50}`},
		{"missing asset", `{"kind":"acquisition","date":"2023-05-01","quantity":10,"price":50}`},
		{"negative amount", `{"kind":"income","date":"2023-05-01","asset":"WIDGET","amount":-5}`},
		{"not json", `acquisition of 10 WIDGET`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEvents(strings.NewReader(tt.line + "\n")); err == nil {
				t.Error("DecodeEvents() accepted the input")
			}
		})
	}
}

func TestEncodeEventCanonicalForm(t *testing.T) {
	e := Event{
		ID:       "a1",
		Pool:     PoolKey{Asset: "WIDGET", Account: "ISA"},
		Date:     MustParseDate("2024-01-10"),
		Kind:     KindAcquisition,
		Quantity: Q(10),
		Price:    M(52.5, "GBP"),
	}
	var b strings.Builder
	if err := EncodeEvent(&b, e); err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}
	want := `{"kind":"acquisition","id":"a1","date":"2024-01-10","asset":"WIDGET","account":"ISA","quantity":10,"price":52.5,"currency":"GBP"}` + "\n"
	if b.String() != want {
		t.Errorf("EncodeEvent() =\n%s, want\n%s", b.String(), want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	events, err := DecodeEvents(strings.NewReader(sampleEvents))
	if err != nil {
		t.Fatalf("DecodeEvents() error = %v", err)
	}
	var b strings.Builder
	if err := EncodeEvents(&b, events); err != nil {
		t.Fatalf("EncodeEvents() error = %v", err)
	}
	again, err := DecodeEvents(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("decoding the encoded stream: %v", err)
	}
	if len(again) != len(events) {
		t.Fatalf("round trip changed event count: %d != %d", len(again), len(events))
	}
	for i := range events {
		if again[i].ID != events[i].ID || again[i].Kind != events[i].Kind || again[i].Date != events[i].Date {
			t.Errorf("event %d changed: %v != %v", i, again[i], events[i])
		}
	}

	// A second encode of the decoded stream is byte-identical.
	var c strings.Builder
	if err := EncodeEvents(&c, again); err != nil {
		t.Fatalf("EncodeEvents() error = %v", err)
	}
	if b.String() != c.String() {
		t.Errorf("re-encoding is not stable:\n%s\n%s", b.String(), c.String())
	}
}
