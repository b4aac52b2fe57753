package models

import (
	"encoding/json"
	"testing"
)

func TestNullableString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantSet   bool
		wantValid bool
		wantValue string
	}{
		{name: "value", json: `{"city": "Lisbon"}`, wantSet: true, wantValid: true, wantValue: "Lisbon"},
		{name: "null", json: `{"city": null}`, wantSet: true},
		{name: "absent", json: `{}`},
		{name: "empty string", json: `{"city": ""}`, wantSet: true, wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result struct {
				City NullableString `json:"city"`
			}
			if err := json.Unmarshal([]byte(tt.json), &result); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if result.City.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", result.City.Set, tt.wantSet)
			}
			if result.City.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", result.City.Valid, tt.wantValid)
			}
			if result.City.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", result.City.Value, tt.wantValue)
			}
		})
	}
}

func TestNullableFloat64_ApplyTo(t *testing.T) {
	current := Float64(80)

	tests := []struct {
		name    string
		json    string
		wantNil bool
		want    float64
	}{
		{name: "absent keeps value", json: `{}`, want: 80},
		{name: "null clears", json: `{"weight_kg": null}`, wantNil: true},
		{name: "value replaces", json: `{"weight_kg": 72.5}`, want: 72.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateProfileRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}

			dst := current
			req.WeightKg.ApplyTo(&dst)

			if tt.wantNil {
				if dst != nil {
					t.Errorf("ApplyTo() = %v, want nil", *dst)
				}
				return
			}
			if dst == nil || *dst != tt.want {
				t.Errorf("ApplyTo() = %v, want %v", dst, tt.want)
			}
		})
	}
}

func TestUpdateProfileRequest_ClearsCity(t *testing.T) {
	var req UpdateProfileRequest
	if err := json.Unmarshal([]byte(`{"city": null, "daily_goal": 2500}`), &req); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	city := "Porto"
	req.City.ApplyTo(&city)
	if city != "" {
		t.Errorf("Expected city to be cleared, got %q", city)
	}
	if req.DailyGoal == nil || *req.DailyGoal != 2500 {
		t.Errorf("Expected daily_goal 2500, got %v", req.DailyGoal)
	}
	if req.Name.Set {
		t.Error("Expected Name.Set to be false when field is absent")
	}
}
