package attribution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/attribution"
)

func TestExtractUTM_AllPresent(t *testing.T) {
	t.Parallel()

	got := attribution.ExtractUTM("https://news.example.com/a?utm_source=newsletter&utm_medium=email&utm_campaign=spring")
	require.NotNil(t, got.Source)
	require.NotNil(t, got.Medium)
	require.NotNil(t, got.Campaign)
	assert.Equal(t, "newsletter", *got.Source)
	assert.Equal(t, "email", *got.Medium)
	assert.Equal(t, "spring", *got.Campaign)
}

func TestExtractUTM_Partial(t *testing.T) {
	t.Parallel()

	got := attribution.ExtractUTM("https://example.com/?utm_source=twitter&utm_medium=")
	require.NotNil(t, got.Source)
	assert.Equal(t, "twitter", *got.Source)
	assert.Nil(t, got.Medium, "empty value maps to nil")
	assert.Nil(t, got.Campaign)
}

func TestExtractUTM_Decodes(t *testing.T) {
	t.Parallel()

	got := attribution.ExtractUTM("https://example.com/?utm_campaign=black%20friday")
	require.NotNil(t, got.Campaign)
	assert.Equal(t, "black friday", *got.Campaign)
}

func TestExtractUTM_Absent(t *testing.T) {
	t.Parallel()

	for _, ref := range []string{"", "https://example.com/", "https://example.com/?q=1", "%zz://bad"} {
		assert.Equal(t, attribution.UTM{}, attribution.ExtractUTM(ref), "referrer %q", ref)
	}
}
