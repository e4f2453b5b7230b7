package ipstack_test

import (
	"testing"

	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeToken(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{{
		name: "empty",
		in:   "",
		want: "",
	}, {
		name: "double_colon",
		in:   "::",
		want: "::",
	}, {
		name: "dotted_decimal_form",
		in:   "::0.0.250.193",
		want: "::fac1",
	}, {
		name: "already_canonical",
		in:   "::fac1",
		want: "::fac1",
	}, {
		name:    "nonzero_leading_bits",
		in:      "2001:db8::1",
		wantErr: true,
	}, {
		name:    "not_an_address",
		in:      "not-an-address",
		wantErr: true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ipstack.CanonicalizeToken(tc.in)
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
