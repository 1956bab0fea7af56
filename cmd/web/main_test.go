package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadServiceAreaMissingFileIsEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	area := loadServiceArea(filepath.Join(t.TempDir(), "nope.yaml"), zap.New(core))
	require.Empty(t, area.Delivery())
	require.Equal(t, 1, logs.FilterMessage("service-area config missing; no states highlighted").Len())
}

func TestLoadServiceAreaWarnsOnUnknownStates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service_area.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delivery: [TX, XX]\n"), 0o600))
	core, logs := observer.New(zap.WarnLevel)

	area := loadServiceArea(path, zap.New(core))
	require.True(t, area.Delivers("TX"))
	entries := logs.FilterMessage("service-area config names unknown states").All()
	require.Len(t, entries, 1)
}

func TestRepositoryServiceAreaConfigParses(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	area := loadServiceArea("../../config/service_area.yaml", zap.New(core))
	require.True(t, area.Delivers("TX"))
	require.Zero(t, logs.Len())
}
