package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUUID indicates the string is not a valid UUID format
	ErrInvalidUUID = errors.New("invalid UUID format")
	// ErrNotUUIDv7 indicates the UUID is not version 7
	ErrNotUUIDv7 = errors.New("UUID must be version 7")
	// ErrFutureTimestamp indicates a UUIDv7 or intake timestamp ahead of the server clock
	ErrFutureTimestamp = errors.New("timestamp is too far in the future")
)

// MaxClockSkew is how far ahead of the server clock a client timestamp may be
const MaxClockSkew = time.Minute

// NewIntakeID generates a server-side UUIDv7 for intake submitted without an ID
func NewIntakeID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate intake id: %w", err)
	}
	return id.String(), nil
}

// ValidateUUIDv7 checks that id is a UUIDv7 whose embedded time is not
// more than MaxClockSkew after now.
func ValidateUUIDv7(id string, now time.Time) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}

	if parsed.Version() != 7 {
		return fmt.Errorf("%w: got version %d", ErrNotUUIDv7, parsed.Version())
	}

	return ValidateTimestamp(uuidTime(parsed), now)
}

// ValidateTimestamp rejects ts when it is more than MaxClockSkew after now
func ValidateTimestamp(ts, now time.Time) error {
	if ts.After(now.Add(MaxClockSkew)) {
		return fmt.Errorf("%w: %s is more than %s ahead", ErrFutureTimestamp, ts.UTC().Format(time.RFC3339), MaxClockSkew)
	}
	return nil
}

// ExtractUUIDv7Timestamp returns the embedded time of a UUIDv7, or the zero time
func ExtractUUIDv7Timestamp(id string) time.Time {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}
	}
	return uuidTime(parsed)
}

// For UUIDv7, Time() is derived from the embedded Unix milliseconds
func uuidTime(id uuid.UUID) time.Time {
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec)
}
