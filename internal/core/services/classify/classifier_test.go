package classify

import (
	"os"
	"testing"

	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_ModelMatchWinsOverEverything(t *testing.T) {
	c := New(nil)

	// Polycom MAC and vendor, but the model string says switch: the device
	// self-report is authoritative.
	typ, conf := c.Classify(Input{
		MAC:        "00:04:f2:11:22:33",
		VendorName: "Polycom Inc",
		Model:      "USW-24-PoE",
	})
	assert.Equal(t, domain.TypeSwitch, typ)
	assert.Equal(t, domain.ConfidenceExact, conf)
}

func TestClassify_OUITierBeatsKeyword(t *testing.T) {
	c := New(nil)

	// Axis prefix maps straight to camera regardless of keyword rules.
	typ, conf := c.Classify(Input{
		MAC:        "00:40:8C:01:02:03",
		VendorName: "Axis Communications AB",
	})
	assert.Equal(t, domain.TypeCamera, typ)
	assert.Equal(t, domain.ConfidenceOUI, conf)
}

func TestClassify_KeywordTier(t *testing.T) {
	c := New(nil)

	typ, conf := c.Classify(Input{VendorName: "Polycom Inc"})
	assert.Equal(t, domain.TypePhone, typ)
	assert.Equal(t, domain.ConfidenceKeyword, conf)
}

func TestClassify_FallbackUnknown(t *testing.T) {
	c := New(nil)

	typ, conf := c.Classify(Input{MAC: "de:ad:be:ef:00:01", VendorName: "Frobnicators GmbH"})
	assert.Equal(t, domain.TypeUnknown, typ)
	assert.Equal(t, domain.ConfidenceNone, conf)

	// Completely empty input must not panic.
	typ, conf = c.Classify(Input{})
	assert.Equal(t, domain.TypeUnknown, typ)
	assert.Equal(t, domain.ConfidenceNone, conf)
}

func TestClassify_HostnameFeedsMetadataTier(t *testing.T) {
	c := New(nil)

	typ, conf := c.Classify(Input{Hostname: "office-fortigate-01"})
	assert.Equal(t, domain.TypeFirewall, typ)
	assert.Equal(t, domain.ConfidenceExact, conf)
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(nil)
	in := Input{MAC: "f0:9f:c2:aa:bb:cc", VendorName: "Ubiquiti Inc", Model: "U6-Pro"}

	first, firstConf := c.Classify(in)
	for i := 0; i < 100; i++ {
		typ, conf := c.Classify(in)
		require.Equal(t, first, typ)
		require.Equal(t, firstConf, conf)
	}
}

func TestKeywordPriorityOrder(t *testing.T) {
	tables := DefaultTables()

	// "Amazon" matches both iot (40) and nothing higher; a vendor matching
	// two patterns must resolve by priority, not declaration position.
	c := New(tables)
	typ, _ := c.Classify(Input{VendorName: "Epson Dell Hybrid Corp"})
	assert.Equal(t, domain.TypePrinter, typ, "higher priority keyword must win")
}

func TestLoadTables_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/tables.json"
	payload := `{
		"version": "site-1",
		"models": {"meraki": "access_point"},
		"keywords": [{"pattern": "acme", "type": "camera", "priority": 99}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, "site-1", tables.Version)

	c := New(tables)

	typ, _ := c.Classify(Input{Model: "Meraki MR46"})
	assert.Equal(t, domain.TypeAccessPoint, typ)

	typ, _ = c.Classify(Input{VendorName: "ACME Vision"})
	assert.Equal(t, domain.TypeCamera, typ)

	// Defaults survive the merge.
	typ, _ = c.Classify(Input{VendorName: "Polycom Inc"})
	assert.Equal(t, domain.TypePhone, typ)
}
