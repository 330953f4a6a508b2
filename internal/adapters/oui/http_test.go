package oui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacLookupProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
		w.Write([]byte(`{"found":true,"company":"Ubiquiti Inc"}`))
	}))
	defer srv.Close()

	p := NewMacLookupProvider("secret", srv.URL, time.Second)
	vendor, err := p.Lookup(context.Background(), MustParseMAC("f0:9f:c2:aa:bb:cc"))
	require.NoError(t, err)
	assert.Equal(t, "Ubiquiti Inc", vendor)
}

func TestMacLookupProvider_NotFoundPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"found":false}`))
	}))
	defer srv.Close()

	p := NewMacLookupProvider("secret", srv.URL, time.Second)
	_, err := p.Lookup(context.Background(), MustParseMAC("de:ad:be:ef:00:01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMacVendorsProvider_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Polycom Inc\n"))
	}))
	defer srv.Close()

	p := NewMacVendorsProvider(srv.URL, time.Second)
	vendor, err := p.Lookup(context.Background(), MustParseMAC("00:04:f2:11:22:33"))
	require.NoError(t, err)
	assert.Equal(t, "Polycom Inc", vendor)
}

func TestMacVendorsProvider_404IsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewMacVendorsProvider(srv.URL, time.Second)
	_, err := p.Lookup(context.Background(), MustParseMAC("de:ad:be:ef:00:02"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMacVendorLookupProvider_JSONArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"company":"Axis Communications"}]`))
	}))
	defer srv.Close()

	p := NewMacVendorLookupProvider(srv.URL, time.Second)
	vendor, err := p.Lookup(context.Background(), MustParseMAC("00:40:8c:01:02:03"))
	require.NoError(t, err)
	assert.Equal(t, "Axis Communications", vendor)
}

func TestFetch_ServerErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewMacVendorsProvider(srv.URL, time.Second)
	_, err := p.Lookup(context.Background(), MustParseMAC("de:ad:be:ef:00:03"))

	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "macvendors", tErr.Provider)
}

func TestDBProvider_LookupAndFallthrough(t *testing.T) {
	p, err := NewDBProvider(t.TempDir()+"/oui.db", 16)
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	require.NoError(t, p.Insert(ctx, Entry{
		Prefix: "f0:9f:c2", Vendor: "Ubiquiti Networks Inc.", VendorShort: "Ubiquiti", LastUpdated: time.Now(),
	}))

	vendor, err := p.Lookup(ctx, MustParseMAC("f0:9f:c2:00:11:22"))
	require.NoError(t, err)
	assert.Equal(t, "Ubiquiti", vendor)

	_, err = p.Lookup(ctx, MustParseMAC("de:ad:be:ef:00:04"))
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := p.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
