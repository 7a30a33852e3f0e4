package scene

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropsReadsOnlyRequestedKeys(t *testing.T) {
	o := NewObject(ObjectTypeRect)
	o.Fill = "#ff0000"
	o.Width = 40

	p, err := o.Props(PropFill, PropWidth)
	require.NoError(t, err)
	assert.Equal(t, Props{PropFill: "#ff0000", PropWidth: 40.0}, p)
}

func TestPropsUnknownKey(t *testing.T) {
	_, err := NewObject(ObjectTypeRect).Props("color")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestApplyAcceptsJSONNumbers(t *testing.T) {
	var p Props
	dec := json.NewDecoder(strings.NewReader(`{"left": 12.5, "top": 3, "flipX": true, "fill": "blue"}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&p))

	o := NewObject(ObjectTypeRect)
	require.NoError(t, o.Apply(p))
	assert.Equal(t, 12.5, o.Left)
	assert.Equal(t, 3.0, o.Top)
	assert.True(t, o.FlipX)
	assert.Equal(t, "blue", o.Fill)
}

func TestApplyIsAllOrNothing(t *testing.T) {
	o := NewObject(ObjectTypeRect)
	err := o.Apply(Props{PropLeft: 10.0, PropFill: 3})
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, 0.0, o.Left)
}

func TestCloneCopiesMembers(t *testing.T) {
	g := NewObject(ObjectTypeGroup)
	g.Members = []*Object{NewObject(ObjectTypeText)}

	c := g.Clone()
	c.Members[0].Text = "changed"
	assert.Empty(t, g.Members[0].Text)
}

func TestIsShape(t *testing.T) {
	assert.True(t, ObjectTypeCircle.IsShape())
	assert.False(t, ObjectTypeText.IsShape())
}
