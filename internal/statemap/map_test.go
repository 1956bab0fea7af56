package statemap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agencybankai-hash/deca-website-sub001/internal/testutil"
)

func newTestMap(t *testing.T, cfg Config) *Map {
	t.Helper()

	table, err := NewTable(testutil.RegionTable(t))
	require.NoError(t, err)
	return New(table, cfg)
}

func TestResolveColorPrecedence(t *testing.T) {
	t.Parallel()

	theme := Theme{Idle: "#idle", Hover: "#hover", Highlight: "#highlight"}
	const override = "#override"

	for _, hasOverride := range []bool{false, true} {
		for _, highlighted := range []bool{false, true} {
			for _, hovered := range []bool{false, true} {
				overrides := map[string]string{}
				if hasOverride {
					overrides["CA"] = override
				}
				set := map[string]struct{}{}
				if highlighted {
					set["CA"] = struct{}{}
				}
				hover := ""
				if hovered {
					hover = "CA"
				}

				got := ResolveColor("CA", overrides, set, hover, theme)
				switch {
				case hasOverride:
					require.Equal(t, override, got)
				case highlighted:
					require.Equal(t, "#highlight", got)
				case hovered:
					require.Equal(t, "#hover", got)
				default:
					require.Equal(t, "#idle", got)
				}
			}
		}
	}
}

func TestOverrideBeatsHighlight(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, Config{
		Highlighted:    []string{"CA"},
		ColorOverrides: map[string]string{"CA": "#ff8800"},
	})
	m.PointerEnter("CA")

	require.Equal(t, "#ff8800", m.Fill("CA"))
}

func TestHighlightedTexasScenario(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, Config{Highlighted: []string{"TX"}, ColorOverrides: map[string]string{}})

	for _, s := range m.Shapes() {
		if s.Code == "TX" {
			require.Equal(t, DefaultTheme.Highlight, s.Fill)
			require.True(t, s.Highlighted)
			continue
		}
		require.Equal(t, DefaultTheme.Idle, s.Fill, s.Code)
	}
	require.False(t, m.Tooltip().Visible)
}

func TestHoverIsExclusive(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, Config{})
	m.PointerEnter("CA")
	m.PointerEnter("NY")

	hovered, ok := m.Hovered()
	require.True(t, ok)
	require.Equal(t, "NY", hovered)

	var count int
	for _, s := range m.Shapes() {
		if s.Hovered {
			count++
			require.Equal(t, DefaultTheme.Hover, s.Fill)
		}
	}
	require.Equal(t, 1, count)

	// The late leave from CA must not clear NY.
	m.PointerLeave("CA")
	hovered, ok = m.Hovered()
	require.True(t, ok)
	require.Equal(t, "NY", hovered)
}

func TestTooltipFollowsHover(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, Config{})
	require.False(t, m.Tooltip().Visible)

	m.PointerEnter("TX")
	tip := m.Tooltip()
	require.True(t, tip.Visible)
	require.Equal(t, "Texas", tip.Name)
	require.Equal(t, 450.0, tip.X)

	m.PointerLeave("TX")
	require.Equal(t, Tooltip{}, m.Tooltip())
}

func TestSetHoveredIgnoresUnknownCodes(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, Config{})
	require.False(t, m.SetHovered("ZZ"))
	_, ok := m.Hovered()
	require.False(t, ok)

	require.True(t, m.SetHovered("CA"))
	m.ClearHovered()
	_, ok = m.Hovered()
	require.False(t, ok)
}

func TestPointerMoveHitTests(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, Config{})

	code, ok := m.PointerMove(150, 150)
	require.True(t, ok)
	require.Equal(t, "CA", code)

	code, ok = m.PointerMove(450, 480)
	require.True(t, ok)
	require.Equal(t, "TX", code)
	hovered, _ := m.Hovered()
	require.Equal(t, "TX", hovered)

	_, ok = m.PointerMove(5, 5)
	require.False(t, ok)
	_, ok = m.Hovered()
	require.False(t, ok)
}

func TestClickRelaysCodeAndName(t *testing.T) {
	t.Parallel()

	var got [][2]string
	m := newTestMap(t, Config{OnRegionClick: func(code, name string) {
		got = append(got, [2]string{code, name})
	}})

	m.Click("NY")
	m.Click("ZZ")
	require.Equal(t, [][2]string{{"NY", "New York"}}, got)
}

func TestClickWithoutCallbackIsNoop(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, Config{})
	require.NotPanics(t, func() { m.Click("CA") })
}

func TestUnknownCodesInConfigAreIgnored(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, Config{
		Highlighted:    []string{"ZZ"},
		ColorOverrides: map[string]string{"QQ": "#000000"},
	})

	shapes := m.Shapes()
	require.Len(t, shapes, 3)
	for _, s := range shapes {
		require.Equal(t, DefaultTheme.Idle, s.Fill)
	}
}

func TestEmptyTable(t *testing.T) {
	t.Parallel()

	m := New(nil, Config{Highlighted: []string{"TX"}})
	require.Empty(t, m.Shapes())
	m.PointerEnter("TX")
	require.False(t, m.Tooltip().Visible)
	_, ok := m.PointerMove(10, 10)
	require.False(t, ok)
}

func TestNewDefaultsSizeAndTheme(t *testing.T) {
	t.Parallel()

	m := newTestMap(t, Config{Theme: Theme{Highlight: "#123456"}})
	w, h := m.Size()
	require.Equal(t, 975, w)
	require.Equal(t, 610, h)
	require.Equal(t, "#123456", m.Theme().Highlight)
	require.Equal(t, DefaultTheme.Idle, m.Theme().Idle)
}
