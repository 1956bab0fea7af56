package statemap

import (
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/require"
)

func TestParsePathDataAbsolute(t *testing.T) {
	t.Parallel()

	p, err := ParsePathData("M100.04,200.06L150.04,200.06L150.04,250.06L100.04,250.06Z")
	require.NoError(t, err)

	elems := p.Elements()
	require.Len(t, elems, 5)
	require.Equal(t, gg.MoveTo{Point: gg.Pt(100.04, 200.06)}, elems[0])
	require.Equal(t, gg.LineTo{Point: gg.Pt(150.04, 250.06)}, elems[2])
	require.IsType(t, gg.Close{}, elems[4])
}

func TestParsePathDataRelativeAndShorthand(t *testing.T) {
	t.Parallel()

	p, err := ParsePathData("m10 10 h20 v20 h-20 z M50,50 l10,0 0,10 z")
	require.NoError(t, err)

	elems := p.Elements()
	require.Equal(t, gg.MoveTo{Point: gg.Pt(10, 10)}, elems[0])
	require.Equal(t, gg.LineTo{Point: gg.Pt(30, 10)}, elems[1])
	require.Equal(t, gg.LineTo{Point: gg.Pt(30, 30)}, elems[2])
	require.Equal(t, gg.LineTo{Point: gg.Pt(10, 30)}, elems[3])
	require.IsType(t, gg.Close{}, elems[4])
	require.Equal(t, gg.MoveTo{Point: gg.Pt(50, 50)}, elems[5])
	require.Equal(t, gg.LineTo{Point: gg.Pt(60, 50)}, elems[6])
	require.Equal(t, gg.LineTo{Point: gg.Pt(60, 60)}, elems[7])
}

func TestParsePathDataCurvesAndExponents(t *testing.T) {
	t.Parallel()

	p, err := ParsePathData("M0,0C1e1,0 10,10 10,10q5-5 10,0Z")
	require.NoError(t, err)

	elems := p.Elements()
	require.Equal(t, gg.CubicTo{Control1: gg.Pt(10, 0), Control2: gg.Pt(10, 10), Point: gg.Pt(10, 10)}, elems[1])
	require.Equal(t, gg.QuadTo{Control: gg.Pt(15, 5), Point: gg.Pt(20, 10)}, elems[2])
}

func TestParsePathDataHoleIsOutside(t *testing.T) {
	t.Parallel()

	p, err := ParsePathData("M0,0L100,0L100,100L0,100ZM40,40L60,40L60,60L40,60Z")
	require.NoError(t, err)
	require.NotZero(t, p.Winding(gg.Pt(10, 10))%2)
	require.Zero(t, p.Winding(gg.Pt(50, 50))%2)
}

func TestParsePathDataRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, d := range []string{
		"L10,10",
		"M10",
		"M0,0 X5,5",
		"10,10",
		"M0,0Z 5,5",
		"M0,0L.,3",
	} {
		_, err := ParsePathData(d)
		require.ErrorIs(t, err, ErrPathData, d)
	}
}

func TestParsePathDataEmpty(t *testing.T) {
	t.Parallel()

	p, err := ParsePathData("  ")
	require.NoError(t, err)
	require.Empty(t, p.Elements())
}
