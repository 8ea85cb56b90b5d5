// Package property holds the ground-truth record for a property. The
// secret fields here are the sole source of truth the hallucination
// validator compares against: either unset or non-empty.
package property

import (
	"context"
	"fmt"

	"github.com/hostling/guestgate/internal/docstore"
)

// Record is a property as the pipeline consumes it, read-only.
type Record struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`

	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`

	WiFiNetwork  string `json:"wifi_network"`
	WiFiPassword string `json:"wifi_password"`
	DoorCode     string `json:"door_code"`
	GateCode     string `json:"gate_code"`
	LockboxCode  string `json:"lockbox_code"`
	GarageCode   string `json:"garage_code"`

	HouseRules  string `json:"house_rules"`
	CustomInfo  string `json:"custom_info"`
	LocalTips   string `json:"local_tips"`
	CalendarURL string `json:"calendar_url"`
}

// SecretField names one gated value on the record.
type SecretField struct {
	Label string
	Value string
}

// SecretFields lists the gated fields in presentation order, including
// unset ones — the gate renders those as "not provided" rather than
// skipping them.
func (r *Record) SecretFields() []SecretField {
	return []SecretField{
		{"WiFi network", r.WiFiNetwork},
		{"WiFi password", r.WiFiPassword},
		{"Door code", r.DoorCode},
		{"Gate code", r.GateCode},
		{"Lockbox code", r.LockboxCode},
		{"Garage code", r.GarageCode},
	}
}

// HasSecrets reports whether any gated field is set.
func (r *Record) HasSecrets() bool {
	for _, f := range r.SecretFields() {
		if f.Value != "" {
			return true
		}
	}
	return false
}

func key(id string) string { return "property:" + id }

// Load reads a property record from the document store.
func Load(ctx context.Context, store docstore.Store, id string) (*Record, error) {
	doc, ok, err := store.Get(ctx, key(id))
	if err != nil {
		return nil, fmt.Errorf("load property %q: %w", id, err)
	}
	if !ok {
		return nil, nil
	}
	rec := &Record{ID: id}
	fromDoc(rec, doc)
	return rec, nil
}

// Save writes a property record to the document store.
func Save(ctx context.Context, store docstore.Store, rec *Record) error {
	if err := store.Set(ctx, key(rec.ID), toDoc(rec), false); err != nil {
		return fmt.Errorf("save property %q: %w", rec.ID, err)
	}
	return nil
}

func str(doc docstore.Doc, field string) string {
	s, _ := doc[field].(string)
	return s
}

func fromDoc(rec *Record, doc docstore.Doc) {
	rec.Name = str(doc, "name")
	rec.Address = str(doc, "address")
	rec.City = str(doc, "city")
	rec.Timezone = str(doc, "timezone")
	rec.CheckInTime = str(doc, "check_in_time")
	rec.CheckOutTime = str(doc, "check_out_time")
	rec.WiFiNetwork = str(doc, "wifi_network")
	rec.WiFiPassword = str(doc, "wifi_password")
	rec.DoorCode = str(doc, "door_code")
	rec.GateCode = str(doc, "gate_code")
	rec.LockboxCode = str(doc, "lockbox_code")
	rec.GarageCode = str(doc, "garage_code")
	rec.HouseRules = str(doc, "house_rules")
	rec.CustomInfo = str(doc, "custom_info")
	rec.LocalTips = str(doc, "local_tips")
	rec.CalendarURL = str(doc, "calendar_url")
}

func toDoc(rec *Record) docstore.Doc {
	return docstore.Doc{
		"name":           rec.Name,
		"address":        rec.Address,
		"city":           rec.City,
		"timezone":       rec.Timezone,
		"check_in_time":  rec.CheckInTime,
		"check_out_time": rec.CheckOutTime,
		"wifi_network":   rec.WiFiNetwork,
		"wifi_password":  rec.WiFiPassword,
		"door_code":      rec.DoorCode,
		"gate_code":      rec.GateCode,
		"lockbox_code":   rec.LockboxCode,
		"garage_code":    rec.GarageCode,
		"house_rules":    rec.HouseRules,
		"custom_info":    rec.CustomInfo,
		"local_tips":     rec.LocalTips,
		"calendar_url":   rec.CalendarURL,
	}
}
