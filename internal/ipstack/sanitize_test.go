package ipstack_test

import (
	"net/netip"
	"testing"

	"github.com/AdguardTeam/golibs/testutil"
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAddr(t testing.TB, cidr string) (a ipstack.Addr) {
	t.Helper()

	p := netip.MustParsePrefix(cidr)

	return ipstack.Addr{Prefix: p}
}

func TestSanitize_emptyAddressListDisables(t *testing.T) {
	t.Parallel()

	addrs := []ipstack.Addr{}
	s := &ipstack.Stack{
		Family:    ipstack.FamilyIPv4,
		Enabled:   ipstack.Bool(true),
		Addresses: &addrs,
		PropList:  ipstack.NewPropSet(ipstack.PropEnabled, ipstack.PropAddresses),
	}

	err := ipstack.Sanitize(s, true)
	require.NoError(t, err)

	assert.False(t, ipstack.BoolVal(s.Enabled, true))
	assert.Nil(t, s.Addresses)
}

func TestSanitize_idempotent(t *testing.T) {
	t.Parallel()

	lt := ipstack.NewLifetimeSeconds(3600)
	addrs := []ipstack.Addr{
		mustAddr(t, "192.0.2.5/24"),
		{Prefix: netip.MustParsePrefix("198.51.100.9/24"), ValidLifetime: &lt},
	}
	s := &ipstack.Stack{
		Family:    ipstack.FamilyIPv4,
		Enabled:   ipstack.Bool(true),
		DHCP:      ipstack.Bool(false),
		Addresses: &addrs,
		PropList: ipstack.NewPropSet(
			ipstack.PropEnabled, ipstack.PropDHCP, ipstack.PropAddresses,
		),
	}

	require.NoError(t, ipstack.Sanitize(s, true))
	first := *s.Addresses

	require.NoError(t, ipstack.Sanitize(s, false))
	assert.Equal(t, first, *s.Addresses)
	assert.True(t, ipstack.BoolVal(s.Enabled, false))
}

func TestSanitize_disabledIsCanonical(t *testing.T) {
	t.Parallel()

	addrs := []ipstack.Addr{mustAddr(t, "10.0.0.1/24")}
	s := &ipstack.Stack{
		Family:    ipstack.FamilyIPv4,
		Enabled:   ipstack.Bool(false),
		DHCP:      ipstack.Bool(true),
		Addresses: &addrs,
		PropList: ipstack.NewPropSet(
			ipstack.PropEnabled, ipstack.PropDHCP, ipstack.PropAddresses,
		),
	}

	require.NoError(t, ipstack.Sanitize(s, true))

	assert.Nil(t, s.DHCP)
	assert.Nil(t, s.Addresses)
}

func TestSanitize_familyPurity(t *testing.T) {
	t.Parallel()

	addrs := []ipstack.Addr{mustAddr(t, "2001:db8::1/64")}
	s := &ipstack.Stack{
		Family:    ipstack.FamilyIPv4,
		Enabled:   ipstack.Bool(true),
		Addresses: &addrs,
		PropList:  ipstack.NewPropSet(ipstack.PropEnabled, ipstack.PropAddresses),
	}

	err := ipstack.Sanitize(s, true)
	testutil.AssertErrorMsg(t, "address 2001:db8::1/64 does not match stack family ipv4: invalid argument", err)
}

func TestSanitize_ipv6LinkLocalFiltered(t *testing.T) {
	t.Parallel()

	addrs := []ipstack.Addr{
		mustAddr(t, "fe80::1/64"),
		mustAddr(t, "2001:db8::1/64"),
	}
	s := &ipstack.Stack{
		Family:    ipstack.FamilyIPv6,
		Enabled:   ipstack.Bool(true),
		Addresses: &addrs,
		PropList:  ipstack.NewPropSet(ipstack.PropEnabled, ipstack.PropAddresses),
	}

	require.NoError(t, ipstack.Sanitize(s, true))
	require.Len(t, *s.Addresses, 1)
	assert.Equal(t, "2001:db8::1/64", (*s.Addresses)[0].String())
}

func TestSanitize_autoAddressPurged(t *testing.T) {
	t.Parallel()

	lt := ipstack.NewLifetimeSeconds(3600)
	addrs := []ipstack.Addr{
		{Prefix: netip.MustParsePrefix("192.0.2.5/24"), ValidLifetime: &lt},
		mustAddr(t, "192.0.2.6/24"),
	}
	s := &ipstack.Stack{
		Family:    ipstack.FamilyIPv4,
		Enabled:   ipstack.Bool(true),
		DHCP:      ipstack.Bool(false),
		Addresses: &addrs,
		PropList: ipstack.NewPropSet(
			ipstack.PropEnabled, ipstack.PropDHCP, ipstack.PropAddresses,
		),
	}

	require.NoError(t, ipstack.Sanitize(s, true))
	require.Len(t, *s.Addresses, 1)
	assert.Equal(t, "192.0.2.6/24", (*s.Addresses)[0].String())
}

func TestSanitize_hostnameConsistency(t *testing.T) {
	t.Parallel()

	custom := "my-host"
	s := &ipstack.Stack{
		Family:             ipstack.FamilyIPv4,
		Enabled:            ipstack.Bool(true),
		DHCP:               ipstack.Bool(true),
		DHCPSendHostname:   ipstack.Bool(false),
		DHCPCustomHostname: &custom,
		PropList: ipstack.NewPropSet(
			ipstack.PropEnabled, ipstack.PropDHCP,
			ipstack.PropDHCPSendHostname, ipstack.PropDHCPCustomHost,
		),
	}

	require.NoError(t, ipstack.Sanitize(s, true))
	assert.Nil(t, s.DHCPCustomHostname)
}

func TestSanitize_tokenCanonicalization(t *testing.T) {
	t.Parallel()

	token := "::0.0.250.193"
	s := &ipstack.Stack{
		Family:    ipstack.FamilyIPv6,
		Enabled:   ipstack.Bool(true),
		Autoconf:  ipstack.Bool(true),
		Token:     &token,
		PropList:  ipstack.NewPropSet(ipstack.PropEnabled, ipstack.PropAutoconf, ipstack.PropToken),
	}

	require.NoError(t, ipstack.Sanitize(s, true))
	require.NotNil(t, s.Token)
	assert.Equal(t, "::fac1", *s.Token)
}

func TestSanitize_tokenRejectedWithAutoconfOff(t *testing.T) {
	t.Parallel()

	token := "::fac1"
	s := &ipstack.Stack{
		Family:    ipstack.FamilyIPv6,
		Enabled:   ipstack.Bool(true),
		Autoconf:  ipstack.Bool(false),
		DHCP:      ipstack.Bool(true),
		Token:     &token,
		PropList: ipstack.NewPropSet(
			ipstack.PropEnabled, ipstack.PropAutoconf, ipstack.PropDHCP, ipstack.PropToken,
		),
	}

	err := ipstack.Sanitize(s, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}
