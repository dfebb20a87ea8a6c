package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ContentType is set on every message carrying a Payload
const ContentType = "application/x-protobuf"

// ErrMissingField is returned when a payload lacks a required key
var ErrMissingField = errors.New("payload field missing")

// MarshalPayload encodes flat event fields as a protobuf Struct.
// Values must be accepted by structpb.NewValue; ids, amounts and times are
// expected as strings (see UUIDValue, DecimalValue, TimeValue).
func MarshalPayload(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}
	body, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return body, nil
}

func UUIDValue(id uuid.UUID) string        { return id.String() }
func DecimalValue(d decimal.Decimal) string { return d.String() }
func TimeValue(t time.Time) string          { return t.UTC().Format(time.RFC3339Nano) }

// Payload is a decoded event body with typed accessors
type Payload struct {
	fields map[string]*structpb.Value
}

// UnmarshalPayload decodes a body produced by MarshalPayload
func UnmarshalPayload(body []byte) (*Payload, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &Payload{fields: s.GetFields()}, nil
}

func (p *Payload) value(key string) (*structpb.Value, error) {
	v, ok := p.fields[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return v, nil
}

// String returns a string field
func (p *Payload) String(key string) (string, error) {
	v, err := p.value(key)
	if err != nil {
		return "", err
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("payload field %s is not a string", key)
	}
	return sv.StringValue, nil
}

// Bool returns a bool field
func (p *Payload) Bool(key string) (bool, error) {
	v, err := p.value(key)
	if err != nil {
		return false, err
	}
	bv, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("payload field %s is not a bool", key)
	}
	return bv.BoolValue, nil
}

// UUID parses a string field as a uuid
func (p *Payload) UUID(key string) (uuid.UUID, error) {
	s, err := p.String(key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("payload field %s: %w", key, err)
	}
	return id, nil
}

// Decimal parses a string field as a decimal amount
func (p *Payload) Decimal(key string) (decimal.Decimal, error) {
	s, err := p.String(key)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("payload field %s: %w", key, err)
	}
	return d, nil
}

// Time parses a string field written by TimeValue
func (p *Payload) Time(key string) (time.Time, error) {
	s, err := p.String(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("payload field %s: %w", key, err)
	}
	return t, nil
}
