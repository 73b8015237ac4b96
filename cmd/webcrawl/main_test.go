package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"webcrawl/pkg/config"
	"webcrawl/pkg/models"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList("a, b ,c"))
	assert.Equal(t, []string{"only"}, splitList("only"))
	assert.Empty(t, splitList(" , ,"))
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := config.NewCrawlConfig()
	setFlags := map[string]bool{"full": true, "polite": true}
	applyFlagOverrides(cfg, setFlags, "https://a.test,https://b.test", 9, false, false,
		"dict", "cargo,port", "casino", "/tmp/state", true)

	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.SeedURLs)
	assert.Equal(t, 9, cfg.VisitLimit)
	assert.False(t, cfg.Full)
	assert.False(t, cfg.BePolite)
	assert.Equal(t, "dict", cfg.OutputAs)
	assert.Equal(t, []string{"cargo", "port"}, cfg.RequiredKeywords)
	assert.Equal(t, []string{"casino"}, cfg.ExcludedKeywords)
	assert.Equal(t, "/tmp/state", cfg.StateDir)
	assert.True(t, cfg.Resume)
}

func TestApplyFlagOverridesKeepsConfigValues(t *testing.T) {
	cfg := config.NewCrawlConfig()
	cfg.SeedURLs = []string{"https://from-config.test"}
	cfg.VisitLimit = 42
	applyFlagOverrides(cfg, nil, "", 0, true, true, "", "", "", "", false)

	assert.Equal(t, []string{"https://from-config.test"}, cfg.SeedURLs)
	assert.Equal(t, 42, cfg.VisitLimit)
}

func TestApplyFlagOverridesKeepsFileBooleans(t *testing.T) {
	// Flag defaults for -full and -polite match the config defaults
	// (true), so a config file disabling them must survive when the
	// flags were not passed on the command line.
	cfg := config.NewCrawlConfig()
	require.NoError(t, yaml.Unmarshal([]byte("full: false\nbe_polite: false\n"), cfg))
	applyFlagOverrides(cfg, map[string]bool{}, "", 0, true, true, "", "", "", "", false)

	assert.False(t, cfg.Full, "file value for full must survive an unset -full flag")
	assert.False(t, cfg.BePolite, "file value for be_polite must survive an unset -polite flag")

	applyFlagOverrides(cfg, map[string]bool{"full": true, "polite": true}, "", 0, true, true, "", "", "", "", false)
	assert.True(t, cfg.Full)
	assert.True(t, cfg.BePolite)
}

func samplePages() []models.VisitedPage {
	return []models.VisitedPage{
		{URL: "https://example.com/", Title: "Root", Format: "html"},
		{URL: "https://example.com/a", Title: "A", Format: "html"},
	}
}

func TestWriteResultTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, samplePages(), config.OutputTable, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "url\thostname\t"))
}

func TestWriteResultDict(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, samplePages(), config.OutputDict, false))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "https://example.com/", records[0]["url"])
}

func TestWriteResultJSONLOverride(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, samplePages(), config.OutputTable, true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var page models.VisitedPage
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &page))
	assert.Equal(t, "Root", page.Title)
}

func TestWriteResultUnknownPackaging(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeResult(&buf, samplePages(), "spreadsheet", false))
}
