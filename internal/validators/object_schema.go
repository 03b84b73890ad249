// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/MKhiriev/go-chat-profiles/models"
	"github.com/go-playground/validator/v10"
)

// Mode selects the checks Segregate applies.
type Mode int

const (
	// ModeCreate enforces required fields and fills defaults.
	ModeCreate Mode = iota
	// ModeUpdate accepts any non-empty subset of mutable fields (PUT and PATCH).
	ModeUpdate
)

// Field declares one field of a logical object.
type Field struct {
	// Name is the key in request payloads and responses.
	Name string
	// Table is the physical table the field is stored in.
	Table string
	// Column defaults to Name.
	Column string
	Kind   models.Kind
	// Rules is a go-playground/validator tag applied to the converted value.
	Rules string

	Required  bool
	ReadOnly  bool
	Immutable bool
	Nullable  bool

	// Default is stored on create when the payload omits the field.
	Default any
}

func (f Field) column() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// ObjectSchema declares the fields of a logical object and the table each belongs to.
type ObjectSchema struct {
	Name   string
	Fields []Field
}

// Field returns the declaration of the named field.
func (s ObjectSchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ObjectValidator checks payloads against an ObjectSchema.
type ObjectValidator struct {
	schema   ObjectSchema
	validate *validator.Validate
}

// NewObjectValidator returns a validator for the given schema.
func NewObjectValidator(schema ObjectSchema) *ObjectValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation(ruleMaxBytes, maxBytes); err != nil {
		panic(err)
	}

	return &ObjectValidator{
		schema:   schema,
		validate: validate,
	}
}

// ruleMaxBytes limits the length of a string in bytes rather than runes.
const ruleMaxBytes = "maxbytes"

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil || fl.Field().Kind() != reflect.String {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Schema returns the schema the validator enforces.
func (v *ObjectValidator) Schema() ObjectSchema {
	return v.schema
}

// Validate type-checks the given payload fields (all present fields when
// none are named). Required and read-only rules are left to Segregate.
func (v *ObjectValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	var payload map[string]any
	switch value := obj.(type) {
	case models.Payload:
		payload = value
	case *models.Payload:
		payload = *value
	case map[string]any:
		payload = value
	default:
		return ErrUnsupportedType
	}

	if len(fields) == 0 {
		fields = slices.Sorted(maps.Keys(payload))
	}

	verr := &ValidationError{}
	for _, name := range fields {
		field, ok := v.schema.Field(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		raw, present := payload[name]
		if !present {
			continue
		}
		if _, msg := v.convert(field, raw); msg != "" {
			verr.Add(name, msg)
		}
	}

	return verr.Err()
}

// Segregate checks payload and splits it into per-table records keyed by
// table name. Column names replace field names where they differ.
func (v *ObjectValidator) Segregate(ctx context.Context, payload models.Payload, mode Mode) (map[string]models.Record, error) {
	verr := &ValidationError{}
	if mode == ModeUpdate && len(payload) == 0 {
		verr.Add(PayloadField, ErrNoFieldsToUpdate.Error())
		return nil, verr
	}

	parts := make(map[string]models.Record)
	put := func(f Field, value any) {
		if parts[f.Table] == nil {
			parts[f.Table] = models.Record{}
		}
		parts[f.Table][f.column()] = value
	}

	for _, name := range slices.Sorted(maps.Keys(payload)) {
		field, ok := v.schema.Field(name)
		switch {
		case !ok:
			verr.Add(name, MsgUnknown)
			continue
		case field.ReadOnly:
			verr.Add(name, MsgReadOnly)
			continue
		case field.Immutable && mode == ModeUpdate:
			verr.Add(name, MsgImmutable)
			continue
		}

		value, msg := v.convert(field, payload[name])
		if msg != "" {
			verr.Add(name, msg)
			continue
		}
		put(field, value)
	}

	if mode == ModeCreate {
		for _, field := range v.schema.Fields {
			if _, present := payload[field.Name]; present {
				continue
			}
			if field.Required && !field.ReadOnly {
				verr.Add(field.Name, MsgRequired)
				continue
			}
			if field.Default != nil {
				put(field, cloneDefault(field.Default))
			}
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return parts, nil
}

// convert turns a JSON-decoded value into the canonical Go type of the
// field's kind and applies the field rules. A non-empty message reports
// why the value was rejected.
func (v *ObjectValidator) convert(field Field, raw any) (any, string) {
	if raw == nil {
		if field.Nullable {
			return nil, ""
		}
		return nil, MsgNotNull
	}

	value, ok := convertKind(field.Kind, raw)
	if !ok {
		return nil, "must be " + kindNoun(field.Kind)
	}

	if field.Rules != "" {
		if err := v.validate.Var(value, field.Rules); err != nil {
			return nil, ruleMessage(err)
		}
	}

	return value, ""
}

func convertKind(kind models.Kind, raw any) (any, bool) {
	switch kind {
	case models.KindString:
		s, ok := raw.(string)
		return s, ok
	case models.KindInt:
		switch n := raw.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, false
			}
			return int64(n), true
		case json.Number:
			i, err := n.Int64()
			return i, err == nil
		case int:
			return int64(n), true
		case int64:
			return n, true
		}
	case models.KindBool:
		b, ok := raw.(bool)
		return b, ok
	case models.KindTime:
		switch t := raw.(type) {
		case time.Time:
			return t.UTC(), true
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, false
			}
			return parsed.UTC(), true
		}
	case models.KindList:
		switch list := raw.(type) {
		case []string:
			return slices.Clone(list), true
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, false
				}
				out = append(out, s)
			}
			return out, true
		}
	case models.KindObject:
		obj, ok := raw.(map[string]any)
		return obj, ok
	}
	return nil, false
}

func kindNoun(kind models.Kind) string {
	switch kind {
	case models.KindString:
		return "a string"
	case models.KindInt:
		return "an integer"
	case models.KindBool:
		return "a boolean"
	case models.KindTime:
		return "an RFC 3339 timestamp"
	case models.KindList:
		return "a list of strings"
	case models.KindObject:
		return "an object"
	}
	return "a " + kind.String()
}

func ruleMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}

	fe := fieldErrs[0]
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return fmt.Sprintf("must satisfy %q", rule)
}

func cloneDefault(v any) any {
	switch d := v.(type) {
	case []string:
		return slices.Clone(d)
	case map[string]any:
		return maps.Clone(d)
	}
	return v
}
