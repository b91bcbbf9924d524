package recon

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDNSXOutput(t *testing.T) {
	out := []byte(`api.example.com [93.184.216.34]
API.example.com [93.184.216.35]
www.example.com. [2606:2800:220:1::]

  mail.example.com
`)
	hosts, err := ParseDNSXOutput(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"api.example.com", "mail.example.com", "www.example.com"}, hosts)
}

func TestParseDNSXOutput_Empty(t *testing.T) {
	hosts, err := ParseDNSXOutput(nil)
	require.NoError(t, err)
	assert.Empty(t, hosts)

	hosts, err = ParseDNSXOutput([]byte("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestParseDNSXOutput_OverlongLine(t *testing.T) {
	out := "a.example.com [127.0.0.1]\n" + strings.Repeat("x", dnsxMaxLine+1) + "\nb.example.com [127.0.0.1]\n"

	hosts, err := ParseDNSXOutput([]byte(out))
	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Equal(t, []string{"a.example.com"}, hosts)
}

func TestDNSXArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"-silent", "-a", "-aaaa", "-resp", "-threads", "50"},
		dnsxArgs(50, nil))
	assert.Equal(t,
		[]string{"-silent", "-a", "-aaaa", "-resp", "-threads", "5", "-r", "1.1.1.1,8.8.8.8:53"},
		dnsxArgs(5, []string{"1.1.1.1", "8.8.8.8:53"}))
}
