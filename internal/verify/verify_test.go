package verify_test

import (
	"net/netip"
	"testing"

	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/verify"
	"github.com/stretchr/testify/assert"
)

func stackWithAddrs(allowExtra bool, cidrs ...string) (s *ipstack.Stack) {
	addrs := make([]ipstack.Addr, 0, len(cidrs))
	for _, c := range cidrs {
		addrs = append(addrs, ipstack.Addr{Prefix: netip.MustParsePrefix(c)})
	}

	return &ipstack.Stack{
		Family:            ipstack.FamilyIPv4,
		Enabled:           ipstack.Bool(true),
		Addresses:         &addrs,
		AllowExtraAddress: ipstack.Bool(allowExtra),
	}
}

func TestInterface_extraAddressAllowed(t *testing.T) {
	t.Parallel()

	forVerify := &ifacemerge.BaseInterface{Name: "eth0"}
	forVerify.SetStackFor(ipstack.FamilyIPv4, stackWithAddrs(true, "10.0.0.1/24"))

	postApply := &ifacemerge.BaseInterface{Name: "eth0"}
	postApply.SetStackFor(ipstack.FamilyIPv4, stackWithAddrs(true, "10.0.0.1/24", "10.0.0.99/24"))

	mismatches := verify.Interface(forVerify, postApply)
	assert.Empty(t, mismatches)
}

func TestInterface_extraAddressDisallowed(t *testing.T) {
	t.Parallel()

	forVerify := &ifacemerge.BaseInterface{Name: "eth0"}
	forVerify.SetStackFor(ipstack.FamilyIPv4, stackWithAddrs(false, "10.0.0.1/24"))

	postApply := &ifacemerge.BaseInterface{Name: "eth0"}
	postApply.SetStackFor(ipstack.FamilyIPv4, stackWithAddrs(false, "10.0.0.1/24", "10.0.0.99/24"))

	mismatches := verify.Interface(forVerify, postApply)
	assert.NotEmpty(t, mismatches)
}

func TestInterface_missingAddressAlwaysFails(t *testing.T) {
	t.Parallel()

	forVerify := &ifacemerge.BaseInterface{Name: "eth0"}
	forVerify.SetStackFor(ipstack.FamilyIPv4, stackWithAddrs(true, "10.0.0.1/24"))

	postApply := &ifacemerge.BaseInterface{Name: "eth0"}
	postApply.SetStackFor(ipstack.FamilyIPv4, stackWithAddrs(true))

	mismatches := verify.Interface(forVerify, postApply)
	assert.NotEmpty(t, mismatches)
}

func TestInterface_dnsIPv6Canonicalization(t *testing.T) {
	t.Parallel()

	forVerify := &ifacemerge.BaseInterface{Name: "eth0"}
	wantStack := &ipstack.Stack{
		Family:  ipstack.FamilyIPv6,
		Enabled: ipstack.Bool(true),
		DNS:     &ipstack.DNSClientState{Servers: []string{"3000::"}},
	}
	forVerify.SetStackFor(ipstack.FamilyIPv6, wantStack)

	postApply := &ifacemerge.BaseInterface{Name: "eth0"}
	gotStack := &ipstack.Stack{
		Family:  ipstack.FamilyIPv6,
		Enabled: ipstack.Bool(true),
		DNS:     &ipstack.DNSClientState{Servers: []string{"3000:0000:0000:0000:0000:0000:0000:0000"}},
	}
	postApply.SetStackFor(ipstack.FamilyIPv6, gotStack)

	mismatches := verify.Interface(forVerify, postApply)
	assert.Empty(t, mismatches)
}

func TestInterface_dnsUntouchedSkipsVerification(t *testing.T) {
	t.Parallel()

	forVerify := &ifacemerge.BaseInterface{Name: "eth0"}
	forVerify.SetStackFor(ipstack.FamilyIPv4, &ipstack.Stack{
		Family:  ipstack.FamilyIPv4,
		Enabled: ipstack.Bool(true),
	})

	postApply := &ifacemerge.BaseInterface{Name: "eth0"}
	postApply.SetStackFor(ipstack.FamilyIPv4, &ipstack.Stack{
		Family:  ipstack.FamilyIPv4,
		Enabled: ipstack.Bool(true),
		DNS:     &ipstack.DNSClientState{Servers: []string{"192.0.2.53"}},
	})

	mismatches := verify.Interface(forVerify, postApply)
	assert.Empty(t, mismatches)
}

func TestInterface_dnsPurgedMustBeCleared(t *testing.T) {
	t.Parallel()

	forVerify := &ifacemerge.BaseInterface{Name: "eth0"}
	forVerify.SetStackFor(ipstack.FamilyIPv4, &ipstack.Stack{
		Family:  ipstack.FamilyIPv4,
		Enabled: ipstack.Bool(true),
		DNS:     &ipstack.DNSClientState{},
	})

	postApply := &ifacemerge.BaseInterface{Name: "eth0"}
	postApply.SetStackFor(ipstack.FamilyIPv4, &ipstack.Stack{
		Family:  ipstack.FamilyIPv4,
		Enabled: ipstack.Bool(true),
		DNS:     &ipstack.DNSClientState{Servers: []string{"192.0.2.53"}},
	})

	mismatches := verify.Interface(forVerify, postApply)
	assert.NotEmpty(t, mismatches)
}

func TestInterface_dnsPurgedAndCleared(t *testing.T) {
	t.Parallel()

	forVerify := &ifacemerge.BaseInterface{Name: "eth0"}
	forVerify.SetStackFor(ipstack.FamilyIPv4, &ipstack.Stack{
		Family:  ipstack.FamilyIPv4,
		Enabled: ipstack.Bool(true),
		DNS:     &ipstack.DNSClientState{},
	})

	postApply := &ifacemerge.BaseInterface{Name: "eth0"}
	postApply.SetStackFor(ipstack.FamilyIPv4, &ipstack.Stack{
		Family:  ipstack.FamilyIPv4,
		Enabled: ipstack.Bool(true),
	})

	mismatches := verify.Interface(forVerify, postApply)
	assert.Empty(t, mismatches)
}

func TestInterface_dnsMappedIPv4Canonicalization(t *testing.T) {
	t.Parallel()

	forVerify := &ifacemerge.BaseInterface{Name: "eth0"}
	wantStack := &ipstack.Stack{
		Family:  ipstack.FamilyIPv6,
		Enabled: ipstack.Bool(true),
		DNS:     &ipstack.DNSClientState{Servers: []string{"::ffff:192.0.2.1"}},
	}
	forVerify.SetStackFor(ipstack.FamilyIPv6, wantStack)

	postApply := &ifacemerge.BaseInterface{Name: "eth0"}
	gotStack := &ipstack.Stack{
		Family:  ipstack.FamilyIPv6,
		Enabled: ipstack.Bool(true),
		DNS:     &ipstack.DNSClientState{Servers: []string{"0:0:0:0:0:FFFF:192.0.2.1"}},
	}
	postApply.SetStackFor(ipstack.FamilyIPv6, gotStack)

	mismatches := verify.Interface(forVerify, postApply)
	assert.Empty(t, mismatches)
}
