package models

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// NullableString is a PATCH field that distinguishes three states:
//   - absent:        Set=false
//   - explicit null: Set=true, Valid=false
//   - value:         Set=true, Valid=true
type NullableString struct {
	Value string
	Valid bool
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	ns.Set = true
	if bytes.Equal(data, jsonNull) {
		ns.Valid = false
		ns.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &ns.Value); err != nil {
		return err
	}
	ns.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return jsonNull, nil
	}
	return json.Marshal(ns.Value)
}

// ApplyTo overwrites dst when the field was present. Null clears it.
func (ns NullableString) ApplyTo(dst *string) {
	if !ns.Set {
		return
	}
	if ns.Valid {
		*dst = ns.Value
		return
	}
	*dst = ""
}

// NullableFloat64 is the numeric counterpart of NullableString
type NullableFloat64 struct {
	Value float64
	Valid bool
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (nf *NullableFloat64) UnmarshalJSON(data []byte) error {
	nf.Set = true
	if bytes.Equal(data, jsonNull) {
		nf.Valid = false
		nf.Value = 0
		return nil
	}
	if err := json.Unmarshal(data, &nf.Value); err != nil {
		return err
	}
	nf.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (nf NullableFloat64) MarshalJSON() ([]byte, error) {
	if !nf.Valid {
		return jsonNull, nil
	}
	return json.Marshal(nf.Value)
}

// ApplyTo overwrites dst when the field was present. Null resets it to nil
// so the engine falls back to its default.
func (nf NullableFloat64) ApplyTo(dst **float64) {
	if !nf.Set {
		return
	}
	if nf.Valid {
		v := nf.Value
		*dst = &v
		return
	}
	*dst = nil
}
