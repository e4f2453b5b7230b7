package schema_test

import (
	"testing"

	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
interfaces:
  - name: eth0
    type: ethernet
    state: up
    ipv4:
      enabled: true
      address:
        - ip: 192.0.2.1
          prefix-length: 24
      dhcp: false
    ipv6:
      enabled: true
      dhcp: true
      autoconf: true
dns-resolver:
  config:
    server:
      - 192.0.2.53
      - 2001:db8::53
    search:
      - example.com
`

func TestParse_happyPath(t *testing.T) {
	t.Parallel()

	doc, err := schema.Parse([]byte(sampleDoc))
	require.NoError(t, err)
	require.Len(t, doc.Interfaces, 1)

	iface := doc.Interfaces[0]
	assert.Equal(t, "eth0", iface.Name)
	require.NotNil(t, iface.IPv4)
	assert.True(t, ipstack.BoolVal(iface.IPv4.Enabled, false))
	require.NotNil(t, iface.IPv4.Addresses)
	require.Len(t, *iface.IPv4.Addresses, 1)
	assert.Equal(t, "192.0.2.1/24", (*iface.IPv4.Addresses)[0].Prefix.String())
	assert.True(t, iface.IPv4.PropList.Has(ipstack.PropEnabled))
	assert.True(t, iface.IPv4.PropList.Has(ipstack.PropAddresses))
	assert.True(t, iface.IPv4.PropList.Has(ipstack.PropDHCP))

	require.NotNil(t, iface.IPv6)
	assert.True(t, ipstack.BoolVal(iface.IPv6.Autoconf, false))

	assert.Equal(t, []string{"192.0.2.53", "2001:db8::53"}, doc.DNS.Servers)
	assert.Equal(t, []string{"example.com"}, doc.DNS.Searches)
}

func TestParse_defaultPrefixLength(t *testing.T) {
	t.Parallel()

	const raw = `
interfaces:
  - name: eth0
    type: ethernet
    state: up
    ipv4:
      enabled: true
      address:
        - 192.0.2.5
`

	doc, err := schema.Parse([]byte(raw))
	require.NoError(t, err)

	addrs := *doc.Interfaces[0].IPv4.Addresses
	require.Len(t, addrs, 1)
	assert.Equal(t, "192.0.2.5/32", addrs[0].Prefix.String())
}

func TestParse_rejectsUnknownField(t *testing.T) {
	t.Parallel()

	const raw = `
interfaces:
  - name: eth0
    type: ethernet
    state: up
    bogus-field: true
`

	_, err := schema.Parse([]byte(raw))
	require.Error(t, err)
	assert.ErrorContains(t, err, "bogus-field")
}

func TestParse_rejectsUnknownStackField(t *testing.T) {
	t.Parallel()

	const raw = `
interfaces:
  - name: eth0
    type: ethernet
    state: up
    ipv4:
      enabled: true
      nonsense: yes
`

	_, err := schema.Parse([]byte(raw))
	require.Error(t, err)
	assert.ErrorContains(t, err, "nonsense")
}

func TestParse_missingInterfaceName(t *testing.T) {
	t.Parallel()

	const raw = `
interfaces:
  - type: ethernet
    state: up
`

	_, err := schema.Parse([]byte(raw))
	require.Error(t, err)
}
