package dnsplace_test

import (
	"net/netip"
	"testing"

	"github.com/AdguardTeam/netreconcile/internal/dnsplace"
	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// changedStatic builds a MergedInterface representing an interface that is
// present in desired, changed, and statically configured for fam with addr.
func changedStatic(name string, fam ipstack.Family, cidr string) (mi *ifacemerge.MergedInterface) {
	addrs := []ipstack.Addr{{Prefix: netip.MustParsePrefix(cidr)}}
	stack := &ipstack.Stack{
		Family:    fam,
		Enabled:   ipstack.Bool(true),
		Addresses: &addrs,
		PropList:  ipstack.PropSet{},
	}

	base := &ifacemerge.BaseInterface{Name: name, Kind: ifacemerge.KindEthernet}
	base.SetStackFor(fam, stack)

	applied := base.Clone()
	verify := base.Clone()

	return &ifacemerge.MergedInterface{
		Desired:   base,
		ForApply:  applied,
		ForVerify: verify,
		IsChanged: true,
	}
}

func TestPlace_splitAndPriority(t *testing.T) {
	t.Parallel()

	set := ifacemerge.NewSet()
	set.Add(changedStatic("eth1", ipstack.FamilyIPv4, "192.0.2.1/24"))
	set.Add(changedStatic("eth2", ipstack.FamilyIPv6, "2001:db8::1/64"))

	global := dnsplace.GlobalConfig{
		Servers:  []string{"2001:db8::1", "192.0.2.53"},
		Searches: []string{"example.com"},
		Options:  []string{"ndots:2"},
	}

	require.NoError(t, dnsplace.Place(set, global))

	eth2 := set.Get(ifacemerge.Key{Name: "eth2", Kind: ifacemerge.KindEthernet})
	eth1 := set.Get(ifacemerge.Key{Name: "eth1", Kind: ifacemerge.KindEthernet})

	v6dns := eth2.ForApply.StackFor(ipstack.FamilyIPv6).DNS
	require.NotNil(t, v6dns)
	assert.Equal(t, []string{"2001:db8::1"}, v6dns.Servers)
	assert.Equal(t, []string{"example.com"}, v6dns.Searches)
	assert.Equal(t, []string{"ndots:2"}, v6dns.Options)
	require.NotNil(t, v6dns.Priority)
	assert.Equal(t, 40, *v6dns.Priority)

	v4dns := eth1.ForApply.StackFor(ipstack.FamilyIPv4).DNS
	require.NotNil(t, v4dns)
	assert.Equal(t, []string{"192.0.2.53"}, v4dns.Servers)
	assert.Empty(t, v4dns.Searches)
	assert.Empty(t, v4dns.Options)
	require.NotNil(t, v4dns.Priority)
	assert.Equal(t, 50, *v4dns.Priority)
}

func TestPlace_ipv6ZoneSelectsHolder(t *testing.T) {
	t.Parallel()

	set := ifacemerge.NewSet()
	set.Add(changedStatic("eth1", ipstack.FamilyIPv4, "192.0.2.1/24"))
	set.Add(changedStatic("eth3", ipstack.FamilyIPv6, "2001:db8::1/64"))

	global := dnsplace.GlobalConfig{Servers: []string{"fe80::1%eth3", "192.0.2.53"}}

	require.NoError(t, dnsplace.Place(set, global))

	eth3 := set.Get(ifacemerge.Key{Name: "eth3", Kind: ifacemerge.KindEthernet})
	v6dns := eth3.ForApply.StackFor(ipstack.FamilyIPv6).DNS
	require.NotNil(t, v6dns)
	assert.Equal(t, []string{"fe80::1"}, v6dns.Servers)
}

// unchangedHolder builds a MergedInterface representing an interface that
// already holds DNS for fam in current state, is not otherwise changed, and
// is not part of the desired document (mirroring a purge-candidate found
// only in current state).
func unchangedHolder(
	name string,
	fam ipstack.Family,
	cidr string,
	dns *ipstack.DNSClientState,
	enabled bool,
) (mi *ifacemerge.MergedInterface) {
	addrs := []ipstack.Addr{{Prefix: netip.MustParsePrefix(cidr)}}
	stack := &ipstack.Stack{
		Family:    fam,
		Enabled:   ipstack.Bool(enabled),
		Addresses: &addrs,
		DNS:       dns,
		PropList:  ipstack.PropSet{},
	}

	base := &ifacemerge.BaseInterface{Name: name, Kind: ifacemerge.KindEthernet}
	base.SetStackFor(fam, stack)

	applied := base.Clone()
	verify := base.Clone()

	return &ifacemerge.MergedInterface{
		Current:   base,
		ForApply:  applied,
		ForVerify: verify,
	}
}

func TestPlace_allEmptyPurgesPreviousHolders(t *testing.T) {
	t.Parallel()

	set := ifacemerge.NewSet()
	set.Add(unchangedHolder("eth1", ipstack.FamilyIPv4, "192.0.2.1/24", &ipstack.DNSClientState{
		Servers: []string{"192.0.2.53"},
	}, true))
	set.Add(unchangedHolder("eth2", ipstack.FamilyIPv6, "2001:db8::1/64", &ipstack.DNSClientState{
		Servers: []string{"2001:db8::53"},
	}, true))

	require.NoError(t, dnsplace.Place(set, dnsplace.GlobalConfig{}))

	eth1 := set.Get(ifacemerge.Key{Name: "eth1", Kind: ifacemerge.KindEthernet})
	eth2 := set.Get(ifacemerge.Key{Name: "eth2", Kind: ifacemerge.KindEthernet})

	assert.True(t, eth1.ForApply.StackFor(ipstack.FamilyIPv4).DNS.IsEmpty())
	assert.True(t, eth1.IsChanged)
	assert.True(t, eth2.ForApply.StackFor(ipstack.FamilyIPv6).DNS.IsEmpty())
	assert.True(t, eth2.IsChanged)
}

func TestPlaceSearchOptionsOnly_purgesPreviousServerHolder(t *testing.T) {
	t.Parallel()

	set := ifacemerge.NewSet()
	set.Add(unchangedHolder("eth1", ipstack.FamilyIPv4, "192.0.2.1/24", &ipstack.DNSClientState{
		Servers: []string{"192.0.2.53"},
	}, false))
	set.Add(changedStatic("eth2", ipstack.FamilyIPv4, "192.0.2.2/24"))

	global := dnsplace.GlobalConfig{Searches: []string{"example.com"}}
	require.NoError(t, dnsplace.Place(set, global))

	eth1 := set.Get(ifacemerge.Key{Name: "eth1", Kind: ifacemerge.KindEthernet})
	assert.True(t, eth1.ForApply.StackFor(ipstack.FamilyIPv4).DNS.IsEmpty())
	assert.True(t, eth1.IsChanged)
}

func TestPlace_rejectsInterleavedFamilies(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		servers []string
		wantErr bool
	}{{
		name:    "464_rejected",
		servers: []string{"192.0.2.1", "2001:db8::1", "192.0.2.2"},
		wantErr: true,
	}, {
		name:    "646_rejected",
		servers: []string{"2001:db8::1", "192.0.2.1", "2001:db8::2"},
		wantErr: true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := dnsplace.Place(ifacemerge.NewSet(), dnsplace.GlobalConfig{Servers: tc.servers})
			require.Error(t, err)
			assert.ErrorContains(t, err, "not implemented")
		})
	}
}
