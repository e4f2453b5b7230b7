package ipstack

// Stack field names, used as keys in a [PropSet].  These match the
// underscored internal field names from the wire-mapping table, not the
// kebab-case wire spelling (that translation is the schema package's job).
const (
	PropEnabled           = "enabled"
	PropDHCP              = "dhcp"
	PropAutoconf          = "autoconf"
	PropAddresses         = "addresses"
	PropAutoDNS           = "auto_dns"
	PropAutoGateway       = "auto_gateway"
	PropAutoRoutes        = "auto_routes"
	PropAutoTableID       = "auto_route_table_id"
	PropAutoRouteMetric   = "auto_route_metric"
	PropDHCPClientID      = "dhcp_client_id"
	PropDHCPDuid          = "dhcp_duid"
	PropAddrGenMode       = "addr_gen_mode"
	PropToken             = "token"
	PropDHCPSendHostname  = "dhcp_send_hostname"
	PropDHCPCustomHost    = "dhcp_custom_hostname"
	PropAllowExtraAddress = "allow_extra_address"
)

// PropSet is the set of field names the user explicitly wrote for a single
// IP stack: the prop_list mechanism described in the design notes.  It lets
// the merge algorithm ask "did the user write this field at all?", a
// question a nil pointer cannot always answer on its own (most acutely for
// Enabled, which has no natural zero-means-absent value).
type PropSet map[string]struct{}

// NewPropSet returns a PropSet containing names.
func NewPropSet(names ...string) (ps PropSet) {
	ps = make(PropSet, len(names))
	ps.Add(names...)

	return ps
}

// Add adds names to ps.
func (ps PropSet) Add(names ...string) {
	for _, n := range names {
		ps[n] = struct{}{}
	}
}

// Has reports whether name is in ps.
func (ps PropSet) Has(name string) (ok bool) {
	_, ok = ps[name]

	return ok
}

// Clone returns a shallow copy of ps.
func (ps PropSet) Clone() (cp PropSet) {
	cp = make(PropSet, len(ps))
	for k := range ps {
		cp[k] = struct{}{}
	}

	return cp
}
