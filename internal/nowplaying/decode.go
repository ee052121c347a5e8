package nowplaying

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/strefethen/sonos-nowplaying-go/internal/apperrors"
)

// ErrMalformedPayload is returned when the zones payload is not a sequence of
// zone objects. It is the only structural failure the normalizer surfaces.
var ErrMalformedPayload = errors.New("malformed zones payload")

// FieldError records a field that was present but unusable and therefore
// treated as empty.
type FieldError struct {
	Zone  int
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("zone %d: field %s: %v", e.Zone, e.Field, e.Err)
}

// DecodeZones parses a raw /zones payload. Per-field type mismatches are
// absorbed (the field stays empty) and reported in the returned FieldErrors;
// a payload that is not an array of objects fails with ErrMalformedPayload.
func DecodeZones(payload []byte) ([]Zone, []FieldError, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil, malformed("zones payload is not an array", nil)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, nil, malformed("zones payload is not valid JSON", err)
	}

	zones := make([]Zone, 0, len(raw))
	var fieldErrs []FieldError
	for i, element := range raw {
		element = bytes.TrimSpace(element)
		if len(element) == 0 || element[0] != '{' {
			return nil, nil, malformed(fmt.Sprintf("zone %d is not an object", i), nil)
		}

		var zone Zone
		if err := json.Unmarshal(element, &zone); err != nil {
			// encoding/json keeps decoding past type mismatches and reports the
			// first one, so the zone is usable with the bad field left empty.
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				return nil, nil, malformed(fmt.Sprintf("zone %d could not be decoded", i), err)
			}
			fieldErrs = append(fieldErrs, FieldError{Zone: i, Field: typeErr.Field, Err: err})
		}
		zones = append(zones, zone)
	}

	return zones, fieldErrs, nil
}

func malformed(message string, cause error) error {
	if cause == nil {
		cause = ErrMalformedPayload
	} else {
		cause = fmt.Errorf("%w: %v", ErrMalformedPayload, cause)
	}
	return apperrors.NewMalformedPayloadError(message, cause)
}
