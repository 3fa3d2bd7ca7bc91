package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type placeOrderBody struct {
	PaymentMethod string `validate:"omitempty,oneof=COD Online"`
	Quantity      int    `validate:"required,gte=1"`
	Email         string `validate:"required,email"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(placeOrderBody{
		PaymentMethod: "COD",
		Quantity:      2,
		Email:         "buyer@scatch.dev",
	})
	assert.NoError(t, err)
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	err := Validate(placeOrderBody{PaymentMethod: "Barter", Quantity: 0, Email: "nope"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := valErr.Fields()
	assert.Equal(t, "must be one of: COD Online", fields["PaymentMethod"])
	assert.Equal(t, "is required", fields["Quantity"])
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Contains(t, valErr.Error(), "field 'Email'")
}
