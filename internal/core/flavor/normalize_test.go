package flavor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeForDisplay(t *testing.T) {
	v := NewBuilder(nil).BuildVector(butterChicken().Ingredients)
	n := NormalizeForDisplay(v)

	assert.InDelta(t, 100, n.Get(Creamy), 1e-9)
	assert.InDelta(t, 1.1/1.8*100, n.Get(Umami), 1e-9)
	assert.Zero(t, n.Get(Spicy))
	assert.True(t, NormalizeForDisplay(Vector{}).IsZero())
}

func TestScaleBounded(t *testing.T) {
	var v Vector
	v[Creamy] = 1.8
	v[Spicy] = 4
	v[Fresh] = 3

	s := ScaleBounded(v)
	assert.InDelta(t, 60, s.Get(Creamy), 1e-9)
	assert.Equal(t, 100.0, s.Get(Spicy))
	assert.InDelta(t, 100, s.Get(Fresh), 1e-9)
	assert.Zero(t, s.Get(Sweet))
}

func TestDescribeProfile(t *testing.T) {
	v := NewBuilder(nil).BuildVector(butterChicken().Ingredients)
	assert.Equal(t, Profile{Dominant: "Creamy", Secondary: "Umami"}, DescribeProfile(v))

	var tie Vector
	tie[Sour] = 1
	tie[Sweet] = 1
	tie[Fresh] = 1
	assert.Equal(t, Profile{Dominant: "Sweet", Secondary: "Sour"}, DescribeProfile(tie))

	var single Vector
	single[Bitter] = 0.4
	assert.Equal(t, Profile{Dominant: "Bitter"}, DescribeProfile(single))

	assert.Equal(t, Profile{}, DescribeProfile(Vector{}))
}

func TestVectorJSON(t *testing.T) {
	var v Vector
	v[Heat] = 0.8

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var m map[string]float64
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Len(t, m, DimensionCount)
	assert.Equal(t, 0.8, m["Heat"])

	var back Vector
	require.NoError(t, json.Unmarshal([]byte(`{"heat":0.8}`), &back))
	assert.Equal(t, v, back)

	assert.Error(t, json.Unmarshal([]byte(`{"Heat":-1}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"Crunchy":1}`), &back))
}
