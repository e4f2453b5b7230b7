package ipstack_test

import (
	"testing"

	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestStack_Equal(t *testing.T) {
	t.Parallel()

	mkBase := func() (s *ipstack.Stack) {
		addrs := []ipstack.Addr{mustAddr(t, "192.0.2.5/24")}

		return &ipstack.Stack{
			Family:    ipstack.FamilyIPv4,
			Enabled:   ipstack.Bool(true),
			DHCP:      ipstack.Bool(false),
			Addresses: &addrs,
		}
	}

	testCases := []struct {
		name  string
		other *ipstack.Stack
		want  bool
	}{{
		name:  "identical",
		other: mkBase(),
		want:  true,
	}, {
		name: "different_address",
		other: func() (s *ipstack.Stack) {
			s = mkBase()
			addrs := []ipstack.Addr{mustAddr(t, "192.0.2.6/24")}
			s.Addresses = &addrs

			return s
		}(),
		want: false,
	}, {
		name: "same_address_new_slice",
		other: func() (s *ipstack.Stack) {
			s = mkBase()
			addrs := []ipstack.Addr{mustAddr(t, "192.0.2.5/24")}
			s.Addresses = &addrs

			return s
		}(),
		want: true,
	}, {
		name: "different_dhcp",
		other: func() (s *ipstack.Stack) {
			s = mkBase()
			s.DHCP = ipstack.Bool(true)

			return s
		}(),
		want: false,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := mkBase().Equal(tc.other)
			if got != tc.want {
				t.Logf("unexpected diff (-want +got):\n%s", cmp.Diff(tc.want, got))
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStack_Equal_nil(t *testing.T) {
	t.Parallel()

	var s *ipstack.Stack

	assert.True(t, s.Equal(nil))
	assert.False(t, s.Equal(base(t)))
}

func base(t testing.TB) (s *ipstack.Stack) {
	addrs := []ipstack.Addr{mustAddr(t, "192.0.2.5/24")}

	return &ipstack.Stack{
		Family:    ipstack.FamilyIPv4,
		Enabled:   ipstack.Bool(true),
		Addresses: &addrs,
	}
}
