// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks request payloads before they reach the store.
//
// An [ObjectSchema] declares the fields of a logical object (a UserProfile,
// a Category, a Conversation, a Message), the table each field is stored in
// and the validator/v10 rules it must satisfy. [ObjectValidator.Segregate]
// checks a decoded JSON payload against the schema and splits it into one
// record per table. Failures are collected field by field into a
// [ValidationError].
package validators

import (
	"context"

	"github.com/MKhiriev/go-chat-profiles/models"
)

// Validator checks a typed value, optionally only the named fields.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}

// PayloadSegregator validates a raw payload against an object schema and
// returns the columns to write, keyed by table name.
type PayloadSegregator interface {
	Segregate(ctx context.Context, payload models.Payload, mode Mode) (map[string]models.Record, error)
}

var (
	_ Validator         = (*CredentialsValidator)(nil)
	_ Validator         = (*ObjectValidator)(nil)
	_ PayloadSegregator = (*ObjectValidator)(nil)
)
