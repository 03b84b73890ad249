package validators

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-chat-profiles/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsValidator_Validate(t *testing.T) {
	tests := []struct {
		name       string
		obj        any
		fields     []string
		wantFields map[string]string
		wantErr    error
	}{
		{
			name: "valid",
			obj:  models.LoginRequest{Email: "ann@example.com", Password: "secret"},
		},
		{
			name: "pointer",
			obj:  &models.LoginRequest{Email: "ann@example.com", Password: "secret"},
		},
		{
			name:       "both missing",
			obj:        models.LoginRequest{Email: "   "},
			wantFields: map[string]string{FieldEmail: MsgRequired, FieldPassword: MsgRequired},
		},
		{
			name:   "only email checked",
			obj:    models.LoginRequest{Email: "ann@example.com"},
			fields: []string{FieldEmail},
		},
		{
			name:    "unknown field",
			obj:     models.LoginRequest{},
			fields:  []string{"nickname"},
			wantErr: ErrUnknownField,
		},
		{
			name:    "unsupported type",
			obj:     "ann@example.com",
			wantErr: ErrUnsupportedType,
		},
	}

	v := NewCredentialsValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.obj, tt.fields...)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantFields != nil:
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantFields, verr.Fields)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
