package zeroconf

import (
	goerrors "errors"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolveOptions_Defaults(t *testing.T) {
	o := NewResolveOptions("_http._tcp.local.")

	assert.Equal(t, []string{"_http._tcp.local."}, o.Protocols())
	assert.Equal(t, 2, o.Retries)
	assert.Equal(t, 2*time.Second, o.RetryDelay)
	assert.Equal(t, 2*time.Second, o.ScanTime)
	assert.Equal(t, ScanQueryTypePtr, o.ScanQueryType)
	assert.False(t, o.AllowOverlappedQueries)
	assert.NoError(t, o.Validate())
}

func TestOptions_ProtocolsAreCaseInsensitiveSet(t *testing.T) {
	o := NewResolveOptions("_http._tcp.local.", "_HTTP._tcp.local.", "_ipp._tcp.local.")
	o.AddProtocol("_IPP._TCP.LOCAL.")

	assert.Equal(t, []string{"_http._tcp.local.", "_ipp._tcp.local."}, o.Protocols(), "first spelling wins")
	assert.True(t, o.HasProtocol("_Http._Tcp.Local."))
	assert.False(t, o.HasProtocol("_ssh._tcp.local."))
}

func TestNewBrowseDomainsOptions(t *testing.T) {
	o := NewBrowseDomainsOptions()
	assert.Equal(t, []string{"_services._dns-sd._udp.local."}, o.Protocols())
	assert.NoError(t, o.Validate())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ResolveOptions)
		field  string
	}{
		{"no protocols", func(o *ResolveOptions) { *o = *NewResolveOptions() }, "protocols"},
		{"blank protocol", func(o *ResolveOptions) { o.AddProtocol("  ") }, "protocols"},
		{"negative retries", func(o *ResolveOptions) { o.Retries = -1 }, "retries"},
		{"zero retry delay", func(o *ResolveOptions) { o.RetryDelay = 0 }, "retry delay"},
		{"negative scan time", func(o *ResolveOptions) { o.ScanTime = -time.Second }, "scan time"},
		{"unknown query type", func(o *ResolveOptions) { o.ScanQueryType = 7 }, "scan query type"},
		{"zero retries allowed", func(o *ResolveOptions) { o.Retries = 0 }, ""},
		{"any query", func(o *ResolveOptions) { o.ScanQueryType = ScanQueryTypeAny }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewResolveOptions("_http._tcp.local.")
			tt.modify(o)

			err := o.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigurationError
			require.True(t, goerrors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestOptions_CloneIsIndependent(t *testing.T) {
	o := NewResolveOptions("_http._tcp.local.")
	o.Adapters = []string{"eth0"}

	c := o.Options.clone()
	o.AddProtocol("_ipp._tcp.local.")
	o.Adapters[0] = "wlan0"

	assert.Equal(t, []string{"_http._tcp.local."}, c.Protocols())
	assert.Equal(t, []string{"eth0"}, c.Adapters)
}

func TestScanQueryType(t *testing.T) {
	assert.Equal(t, "Ptr", ScanQueryTypePtr.String())
	assert.Equal(t, "Any", ScanQueryTypeAny.String())
	assert.Equal(t, "ScanQueryType(9)", ScanQueryType(9).String())
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		queryType ScanQueryType
		qtype     uint16
	}{
		{ScanQueryTypePtr, dns.TypePTR},
		{ScanQueryTypeAny, dns.TypeANY},
	}

	for _, tt := range tests {
		t.Run(tt.queryType.String(), func(t *testing.T) {
			o := NewResolveOptions("_http._tcp.local.", "_ipp._tcp.local.")
			o.ScanQueryType = tt.queryType

			data, err := buildQuery(&o.Options)
			require.NoError(t, err)

			var m dns.Msg
			require.NoError(t, m.Unpack(data))
			assert.False(t, m.Response)
			assert.Equal(t, uint16(0), m.Id)
			require.Len(t, m.Question, 2)
			for i, name := range []string{"_http._tcp.local.", "_ipp._tcp.local."} {
				assert.Equal(t, name, m.Question[i].Name)
				assert.Equal(t, tt.qtype, m.Question[i].Qtype)
				assert.Equal(t, uint16(dns.ClassINET), m.Question[i].Qclass)
			}
		})
	}
}
