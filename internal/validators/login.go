package validators

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-chat-profiles/models"
)

// CredentialsValidator checks login requests.
type CredentialsValidator struct {
}

func NewCredentialsValidator() Validator {
	return &CredentialsValidator{}
}

func (v *CredentialsValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.LoginRequest:
		return v.validateLoginRequest(value, fields...)
	case *models.LoginRequest:
		return v.validateLoginRequest(*value, fields...)
	default:
		return ErrUnsupportedType
	}
}

func (v *CredentialsValidator) validateLoginRequest(req models.LoginRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldPassword}
	}

	verr := &ValidationError{}
	for _, f := range fields {
		switch f {
		case FieldEmail:
			if strings.TrimSpace(req.Email) == "" {
				verr.Add(FieldEmail, MsgRequired)
			}
		case FieldPassword:
			if req.Password == "" {
				verr.Add(FieldPassword, MsgRequired)
			}
		default:
			return ErrUnknownField
		}
	}

	return verr.Err()
}
