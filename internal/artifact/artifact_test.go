package artifact

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalIsDeterministic(t *testing.T) {
	t.Parallel()

	table := Table{
		"TX": {Abbr: "TX", Name: "Texas", D: "M1,1L2,2Z", CX: 1.5, CY: 1.5},
		"CA": {Abbr: "CA", Name: "California", D: "M0,0L1,0L1,1Z", CX: 0.7, CY: 0.3},
	}

	first, err := Marshal(table)
	require.NoError(t, err)
	second, err := Marshal(table)
	require.NoError(t, err)
	require.Equal(t, first, second)

	body := string(first)
	require.True(t, strings.HasSuffix(body, "}\n"))
	require.Less(t, strings.Index(body, `"CA"`), strings.Index(body, `"TX"`), "keys must be sorted")
	require.Contains(t, body, `"cx": 0.7`)
}

func TestParseValidates(t *testing.T) {
	t.Parallel()

	good := `{"CA":{"abbr":"CA","name":"California","d":"M0,0L1,0Z","cx":0.5,"cy":0.2}}`
	table, err := Parse([]byte(good))
	require.NoError(t, err)
	require.Equal(t, []string{"CA"}, table.Codes())

	empty, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	require.Empty(t, empty.Sorted())

	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed", doc: `{"CA":`},
		{name: "mismatched abbr", doc: `{"CA":{"abbr":"TX","name":"x","d":"M0,0Z","cx":1,"cy":1}}`},
		{name: "empty path", doc: `{"CA":{"abbr":"CA","name":"x","d":" ","cx":1,"cy":1}}`},
		{name: "long code", doc: `{"CAL":{"abbr":"CAL","name":"x","d":"M0,0Z","cx":1,"cy":1}}`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.doc))
			require.ErrorIs(t, err, ErrInvalidArtifact)
		})
	}
}

func TestValidateRejectsNonFiniteAnchor(t *testing.T) {
	t.Parallel()

	table := Table{"CA": {Abbr: "CA", Name: "California", D: "M0,0Z", CX: math.NaN(), CY: 1}}
	require.ErrorIs(t, table.Validate(), ErrInvalidArtifact)
}

func TestViewBox(t *testing.T) {
	t.Parallel()
	require.Equal(t, "0 0 975 610", ViewBox())
}
