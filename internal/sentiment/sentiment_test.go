package sentiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultSets())
	require.NoError(t, err)
	return c
}

func TestClassifyBullish(t *testing.T) {
	c := defaultClassifier(t)

	assert.Equal(t, Bullish, c.Classify("I will buy the dip"))
	assert.Equal(t, Bullish, c.Classify("This one is undervalued, big upside here"))
	// Case-insensitive
	assert.Equal(t, Bullish, c.Classify("TIME TO BUY"))
}

func TestClassifyBearish(t *testing.T) {
	c := defaultClassifier(t)

	assert.Equal(t, Bearish, c.Classify("total scam, stay away"))
	assert.Equal(t, Bearish, c.Classify("this will drop hard"))
}

func TestClassifyBothSetsIsUnclassified(t *testing.T) {
	c := defaultClassifier(t)

	// "i bought" is positive, "sold" is negative: one hit each
	assert.Equal(t, Unclassified, c.Classify("i bought early and sold same day"))
}

func TestClassifyNeitherIsUnclassified(t *testing.T) {
	c := defaultClassifier(t)

	assert.Equal(t, Unclassified, c.Classify("anyone watching the results tomorrow?"))
	assert.Equal(t, Unclassified, c.Classify(""))
}

func TestWordBoundaries(t *testing.T) {
	c, err := NewClassifier(Sets{
		Positive: []string{"top"},
		Negative: []string{"sell"},
	})
	require.NoError(t, err)

	// "top" must not match inside "topped" or "laptop"
	assert.Equal(t, Unclassified, c.Classify("topped up today"))
	assert.Equal(t, Unclassified, c.Classify("bought a new laptop"))
	assert.Equal(t, Bullish, c.Classify("heading to the top"))

	// Bearish phrase must stand alone too
	assert.Equal(t, Unclassified, c.Classify("bestseller list"))
	assert.Equal(t, Bearish, c.Classify("time to sell?"))
}

func TestMultiWordPhraseAcrossWhitespace(t *testing.T) {
	c := defaultClassifier(t)

	// Phrase split over a line break still matches
	assert.Equal(t, Bullish, c.Classify("looks like a great\nbuy to me"))
}

func TestHighlight(t *testing.T) {
	c := defaultClassifier(t)

	wrap := func(s string) string { return "**" + s + "**" }
	got := c.Highlight("I will buy soon", Bullish, wrap)
	assert.Equal(t, "I **will buy** soon", got)

	// Unclassified text passes through untouched
	assert.Equal(t, "plain text", c.Highlight("plain text", Unclassified, wrap))
}

func TestLoadSets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"positive":["to the moon"],"negative":["rug pull"]}`), 0o644))

	sets, err := LoadSets(path)
	require.NoError(t, err)

	c, err := NewClassifier(sets)
	require.NoError(t, err)
	assert.Equal(t, Bullish, c.Classify("this is going to the moon"))
	assert.Equal(t, Bearish, c.Classify("classic rug pull"))
}

func TestLoadSetsRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"positive":[],"negative":["x"]}`), 0o644))

	_, err := LoadSets(path)
	assert.Error(t, err)
}
