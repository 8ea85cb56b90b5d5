package property

import (
	"context"
	"testing"

	"github.com/hostling/guestgate/internal/docstore"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()

	in := &Record{
		ID:           "prop-1",
		Name:         "Seaside Cottage",
		Address:      "12 Shore Rd",
		City:         "Brighton",
		Timezone:     "Europe/London",
		CheckInTime:  "15:00",
		CheckOutTime: "11:00",
		WiFiNetwork:  "CottageNet",
		WiFiPassword: "surf123",
		DoorCode:     "4821",
		HouseRules:   "No parties.",
		CalendarURL:  "https://calendar.example.com/feed.ics",
	}
	if err := Save(ctx, store, in); err != nil {
		t.Fatal(err)
	}

	out, err := Load(ctx, store, "prop-1")
	if err != nil {
		t.Fatal(err)
	}
	if out == nil {
		t.Fatal("record not found after save")
	}
	if *out != *in {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestLoadMissing(t *testing.T) {
	rec, err := Load(context.Background(), docstore.NewMemory(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Errorf("got %+v, want nil", rec)
	}
}

func TestHasSecrets(t *testing.T) {
	rec := &Record{ID: "p", Name: "Bare Flat"}
	if rec.HasSecrets() {
		t.Error("empty record claims secrets")
	}
	rec.GateCode = "1234"
	if !rec.HasSecrets() {
		t.Error("gate code not counted as a secret")
	}
}

func TestSecretFieldsIncludeUnset(t *testing.T) {
	rec := &Record{WiFiPassword: "x"}
	fields := rec.SecretFields()
	if len(fields) != 6 {
		t.Fatalf("expected all 6 gated fields, got %d", len(fields))
	}
	set := 0
	for _, f := range fields {
		if f.Value != "" {
			set++
		}
	}
	if set != 1 {
		t.Errorf("expected 1 set field, got %d", set)
	}
}
