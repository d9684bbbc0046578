package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeta(t *testing.T) {
	m := NewMeta(ProviderWebsite, ConfidenceLow)

	assert.NotEmpty(t, m.ImportID)
	assert.Equal(t, ProviderWebsite, m.Provider)
	assert.True(t, m.RequiresConfirmation)
	assert.NotNil(t, m.Fields)
	assert.NotNil(t, m.Signals)
}

func TestMeta_RecomputeGate(t *testing.T) {
	m := NewMeta(ProviderGoogleMaps, ConfidenceHigh)
	for _, f := range []Field{FieldName, FieldCity, FieldCountry, FieldCoordinates} {
		m.SetField(f, ConfidenceHigh)
	}

	m.RecomputeGate()
	assert.False(t, m.RequiresConfirmation)

	m.SetField(FieldCity, ConfidenceMedium)
	m.RecomputeGate()
	assert.True(t, m.RequiresConfirmation)
}

func TestMeta_ForceConfirmation(t *testing.T) {
	m := NewMeta(ProviderPinterest, ConfidenceHigh)
	for _, f := range []Field{FieldName, FieldCity, FieldCountry, FieldCoordinates} {
		m.SetField(f, ConfidenceHigh)
	}
	m.ForceConfirmation = true

	m.RecomputeGate()
	assert.True(t, m.RequiresConfirmation, "forced confirmation wins over an all-high field map")
}

func TestMeta_Signals(t *testing.T) {
	m := NewMeta(ProviderWebsite, ConfidenceLow)
	m.AddSignal("postal_code", "SW1A 1AA")
	m.AddSignal("postal_code", "EC1A 1BB")

	first, ok := m.Signal("postal_code")
	require.True(t, ok)
	assert.Equal(t, "SW1A 1AA", first)

	_, ok = m.Signal("absent")
	assert.False(t, ok)
}

func TestMeta_Clone_Independent(t *testing.T) {
	m := NewMeta(ProviderWebsite, ConfidenceLow)
	m.SetField(FieldName, ConfidenceMedium)
	m.AddSignal("tld", "uk")
	m.Warn("original warning")

	c := m.Clone()
	c.SetField(FieldName, ConfidenceHigh)
	c.AddSignal("tld", "fr")
	c.Warn("clone warning")

	assert.Equal(t, ConfidenceMedium, m.Confidence(FieldName))
	assert.Len(t, m.Signals["tld"], 1)
	assert.Len(t, m.Warnings, 1)
}
