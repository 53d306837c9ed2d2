package cli

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestInspectText(t *testing.T) {
	path := writeFixture(t)

	out, _, err := execute(NewInspectCommand(&RootOptions{Format: FormatText}), path)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "inspect_text", []byte(out))
}

func TestInspectSummary(t *testing.T) {
	path := writeFixture(t)

	out, _, err := execute(NewInspectCommand(&RootOptions{Format: FormatText}), path, "--summary")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "inspect_summary", []byte(out))
}

func TestInspectJSON(t *testing.T) {
	path := writeFixture(t)

	out, _, err := execute(NewInspectCommand(&RootOptions{Format: FormatJSON}), path)
	require.NoError(t, err)

	var result InspectResult
	assert.Equal(t, "ok", decodeResponse(t, out, &result))
	assert.Equal(t, fixtureID.String(), result.ID)
	assert.True(t, fixtureEpoch.Equal(result.CreatedAt))
	assert.Equal(t, 4, result.Frames)
	assert.Equal(t, []string{"primary", "secondary"}, result.Actions)
	require.Len(t, result.Listing, 4)
	assert.Equal(t, FrameInfo{Micros: 20000, X: 5, Y: 5, Actions: []string{"primary", "secondary"}}, result.Listing[2])
	assert.Equal(t, []string{}, result.Listing[0].Actions)
}

func TestInspectStreamFile(t *testing.T) {
	path := writeFile(t, "live.jsonl",
		`{"version":1,"id":"6f1c2d1e-8a4b-4c3d-9e2f-1a2b3c4d5e6f","created_at":"2024-01-01T00:00:00Z"}`+"\n"+
			`{"t":0,"x":1,"y":2,"actions":["primary"]}`+"\n")

	out, _, err := execute(NewInspectCommand(&RootOptions{Format: FormatText}), path, "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "frames:   1")
	assert.Contains(t, out, "actions:  {primary}")
}
