package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/gainsfolio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestParseDateRoundTrip(t *testing.T) {
	parsed := ParseDate("15-03-2024")
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())
	assert.Equal(t, 15, parsed.Day())
	assert.Equal(t, "15-03-2024", FormatDate(parsed))
}

func TestParseDateInvalidReturnsZero(t *testing.T) {
	assert.True(t, ParseDate("not-a-date").IsZero())
	assert.True(t, ParseDate("2024-03-15").IsZero()) // ISO order is not accepted
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.23, RoundFloat(1.2349, 2))
	assert.Equal(t, 1.24, RoundFloat(1.236, 2))
	assert.Equal(t, -1.23, RoundFloat(-1.2349, 2))
	assert.Equal(t, 100.0, RoundFloat(100.0, 2))
}

func TestCountryLookupFromISIN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "country.json")
	data := `[
		{"country": "Ireland", "alpha2": "IE", "alpha3": "IRL", "numeric": "372"},
		{"country": "United States", "alpha2": "US", "alpha3": "USA", "numeric": "840"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	require.NoError(t, InitCountryData(path))

	assert.Equal(t, "372", CountryCodeFromISIN("IE00B4L5Y983"))
	assert.Equal(t, "840", CountryCodeFromISIN("us0378331005"))
	assert.Equal(t, "Ireland", CountryNameFromISIN("IE00B4L5Y983"))
	assert.Equal(t, "", CountryCodeFromISIN("XX1234567890"))
	assert.Equal(t, "", CountryCodeFromISIN("I"))
}

func TestGenerateETagIsStable(t *testing.T) {
	type payload struct {
		A int
		B string
	}

	first, err := GenerateETag(payload{A: 1, B: "x"})
	require.NoError(t, err)
	second, err := GenerateETag(payload{A: 1, B: "x"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	different, err := GenerateETag(payload{A: 2, B: "x"})
	require.NoError(t, err)
	assert.NotEqual(t, first, different)
}
