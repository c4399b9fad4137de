package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"South Beach. Miami, FL. Beaches. Iconic stretch of sand with art deco views.",
	"Vizcaya Museum. Miami, FL. Museums. Historic villa with formal gardens on the bay.",
	"Duval Street. Key West, FL. Nightlife. Bars and galleries along the main strip.",
	"Mallory Square. Key West, FL. Attractions. Sunset celebration on the waterfront.",
}

func TestTokenize(t *testing.T) {
	e := NewTFIDF(0)
	got := e.Tokenize("The BEACH offers sun, sand & 2-for-1 drinks!")
	// stopwords ("the", "offers") and short/leading-digit tokens are dropped
	assert.Equal(t, []string{"beach", "sun", "sand", "drinks"}, got)
}

func TestEncodeBeforeFit(t *testing.T) {
	e := NewTFIDF(0)
	_, err := e.Encode("beach")
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestEncodeDeterministic(t *testing.T) {
	e := NewTFIDF(0).Fit(corpus)
	v1, err := e.Encode("sunset beach with art deco views")
	require.NoError(t, err)
	v2, err := e.Encode("sunset beach with art deco views")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.False(t, v1.IsEmpty())
}

func TestEncodeOutOfVocabulary(t *testing.T) {
	e := NewTFIDF(0).Fit(corpus)
	v, err := e.Encode("zzyzx qwerty")
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())
}

func TestEncodeEmptyText(t *testing.T) {
	e := NewTFIDF(0).Fit(corpus)
	v, err := e.Encode("the and of")
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())
}

func TestVocabCap(t *testing.T) {
	e := NewTFIDF(3).Fit(corpus)
	assert.Equal(t, 3, e.VocabSize())

	// "fl" appears in all four documents so it must survive the cap
	top := e.TopTerms(3)
	require.Len(t, top, 3)
	assert.Equal(t, "fl", top[0].Term)
	// a term in every document gets the smoothed floor idf of 1
	assert.InDelta(t, 1.0, top[0].IDF, 1e-9)
}

func TestIndicesDenseAndOrdered(t *testing.T) {
	e := NewTFIDF(0).Fit(corpus)
	v, err := e.Encode("beach sunset miami")
	require.NoError(t, err)
	require.False(t, v.IsEmpty())
	require.Equal(t, len(v.Indices), len(v.Values))
	for i := 1; i < len(v.Indices); i++ {
		assert.Less(t, v.Indices[i-1], v.Indices[i])
	}
	for _, idx := range v.Indices {
		assert.Less(t, int(idx), e.VocabSize())
	}
}

func TestWeightScaling(t *testing.T) {
	e := NewTFIDF(0).Fit(corpus)
	// "beach beach sunset": tf(beach)=2 is maxTf, so beach weight == idf(beach)
	v, err := e.Encode("beach beach sunset")
	require.NoError(t, err)
	require.Len(t, v.Values, 2)
	for _, w := range v.Values {
		assert.Greater(t, w, float32(0))
	}
}
