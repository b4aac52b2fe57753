package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

// uuidV7At builds a deterministic UUIDv7 whose first 48 bits hold t in Unix milliseconds
func uuidV7At(t time.Time) uuid.UUID {
	var id uuid.UUID
	ms := uint64(t.UnixMilli())
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}
	id[6] = 0x70
	id[8] = 0x80
	id[15] = 0x01
	return id
}

func TestValidateUUIDv7(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"past", uuidV7At(fixedNow.Add(-24 * time.Hour)).String(), nil},
		{"thirty seconds ahead", uuidV7At(fixedNow.Add(30 * time.Second)).String(), nil},
		{"five minutes ahead", uuidV7At(fixedNow.Add(5 * time.Minute)).String(), ErrFutureTimestamp},
		{"version 4", uuid.New().String(), ErrNotUUIDv7},
		{"garbage", "not-a-uuid", ErrInvalidUUID},
		{"empty", "", ErrInvalidUUID},
		{"truncated", "019471a0-0000-7000-8000-", ErrInvalidUUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUUIDv7(tt.id, fixedNow)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewIntakeID(t *testing.T) {
	id, err := NewIntakeID()
	require.NoError(t, err)
	require.NoError(t, ValidateUUIDv7(id, time.Now()))
}

func TestValidateTimestamp(t *testing.T) {
	assert.NoError(t, ValidateTimestamp(fixedNow.Add(MaxClockSkew), fixedNow))
	assert.ErrorIs(t, ValidateTimestamp(fixedNow.Add(MaxClockSkew+time.Millisecond), fixedNow), ErrFutureTimestamp)
}

func TestExtractUUIDv7Timestamp(t *testing.T) {
	specific := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, specific.UnixMilli(), ExtractUUIDv7Timestamp(uuidV7At(specific).String()).UnixMilli())
	assert.True(t, ExtractUUIDv7Timestamp("not-a-uuid").IsZero())
}
