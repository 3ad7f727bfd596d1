package gstin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-billing-api/pkg/gstin"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"05AHMPA2414K1ZO", true},
		{"27AAPFU0939F1ZV", true},
		{"05ahmpa2414k1zo", false},
		{"05AHMPA2414K1XO", false}, // posición 14 debe ser Z
		{"5AHMPA2414K1ZO", false},
		{"", false},
	}
	for _, c := range cases {
		err := gstin.Validate(c.in)
		if c.ok {
			assert.NoError(t, err, c.in)
		} else {
			assert.ErrorIs(t, err, gstin.ErrInvalidFormat, c.in)
		}
	}
}

func TestNormalize(t *testing.T) {
	got, err := gstin.Normalize("  05ahmpa2414k1zo ")
	require.NoError(t, err)
	assert.Equal(t, "05AHMPA2414K1ZO", got)
}

func TestStateCodeYPAN(t *testing.T) {
	code, err := gstin.StateCode("05AHMPA2414K1ZO")
	require.NoError(t, err)
	assert.Equal(t, "05", code)

	pan, err := gstin.PAN("05AHMPA2414K1ZO")
	require.NoError(t, err)
	assert.Equal(t, "AHMPA2414K", pan)
}
