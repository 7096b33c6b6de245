package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
)

func TestValidator_Messages(t *testing.T) {
	v := New()

	testCases := []struct {
		name    string
		input   any
		field   string
		message string
	}{
		{
			name:    "payment amount zero",
			input:   &entity.Payment{TransactionID: "tx-1", Amount: 0, Method: "card"},
			field:   "payment amount",
			message: "payment amount must be greater than 0",
		},
		{
			name:    "payment without transaction",
			input:   &entity.Payment{Amount: 100, Method: "card"},
			field:   "transaction id",
			message: "transaction id is required",
		},
		{
			name:    "device without identifier",
			input:   &entity.Device{Name: "esp-1"},
			field:   "device identifier",
			message: "device identifier is required",
		},
		{
			name:    "device without name",
			input:   &entity.Device{DeviceIdentifier: "AA:BB"},
			field:   "name",
			message: "name is required",
		},
		{
			name:    "user without email",
			input:   &entity.User{Name: "Sara", Phone: "+62811"},
			field:   "email",
			message: "email is required",
		},
		{
			name:    "user with bad email",
			input:   &entity.User{Name: "Sara", Email: "nope", Phone: "+62811"},
			field:   "email",
			message: "email must be a valid email address",
		},
		{
			name:    "locker capacity zero",
			input:   &entity.Locker{Name: "A1"},
			field:   "capacity",
			message: "capacity must be greater than 0",
		},
		{
			name:    "booking without locker",
			input:   &entity.BookingRequest{UserID: "u-1"},
			field:   "locker id",
			message: "locker id is required",
		},
		{
			name:    "booking without user",
			input:   &entity.BookingRequest{LockerID: "l-1"},
			field:   "user id",
			message: "user id is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValidation)
			assert.EqualError(t, err, tc.message)

			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestValidator_Valid(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(&entity.Payment{TransactionID: "tx-1", Amount: 1, Method: "qris"}))
	assert.NoError(t, v.Struct(&entity.Device{Name: "esp", DeviceIdentifier: "AA", IPAddress: "10.0.0.2", Port: 80}))
	assert.NoError(t, v.Struct(&entity.BookingRequest{LockerID: "l-1", UserID: "u-1", Duration: 2}))
}

func TestRequireID(t *testing.T) {
	err := RequireID("id", " ")
	assert.EqualError(t, err, "id is required")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.NoError(t, RequireID("id", "abc"))
}
