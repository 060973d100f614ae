package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestValidationResult_RejectionOmitsWindow(t *testing.T) {
	res := Rejected(ReasonDayNotScheduled, "trip only runs on Monday")

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "departure") {
		t.Errorf("rejection without a booking window serialized a departure: %s", data)
	}
	if strings.Contains(string(data), "hours_until") {
		t.Errorf("rejection without a booking window serialized hours_until: %s", data)
	}
}

func TestValidationResult_AcceptedCarriesWindow(t *testing.T) {
	dep := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

	data, err := json.Marshal(Accepted(dep, 32))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got struct {
		OK         bool       `json:"ok"`
		Departure  *time.Time `json:"departure"`
		HoursUntil float64    `json:"hours_until"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.OK {
		t.Error("accepted result serialized ok=false")
	}
	if got.Departure == nil || !got.Departure.Equal(dep) {
		t.Errorf("expected departure %v, got %v", dep, got.Departure)
	}
	if got.HoursUntil != 32 {
		t.Errorf("expected hours_until 32, got %v", got.HoursUntil)
	}
}
