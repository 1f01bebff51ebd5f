package objectkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner = "11d4c22e42c8f61feaba154683dea407b101cfd90987dda9e342843263ca420a"
	id    = "30a84843-0cd4-4975-95ba-b96112aea189"
)

func TestFlatGenerator(t *testing.T) {
	assert.Equal(t, owner+"/"+id, NewFlatGenerator("").GenerateKey(owner, id))
	assert.Equal(t, "fragments/"+owner+"/"+id, NewFlatGenerator("/fragments/").GenerateKey(owner, id))
}

func TestGitLikeGenerator(t *testing.T) {
	g := NewGitLikeGenerator()
	assert.Equal(t, owner+"/objects/30/a848430cd4497595bab96112aea189", g.GenerateKey(owner, id))

	g.ShardLength = 3
	assert.Equal(t, owner+"/objects/30a/848430cd4497595bab96112aea189", g.GenerateKey(owner, id))

	assert.Equal(t, owner+"/objects/ab", g.GenerateKey(owner, "ab"))
}

func TestHashedGenerator(t *testing.T) {
	g := NewHashedGenerator()
	key := g.GenerateKey(owner, id)

	assert.Equal(t, key, g.GenerateKey(owner, id), "keys are deterministic")
	assert.NotEqual(t, key, g.GenerateKey("other", id))
	assert.NotContains(t, key, owner)
	assert.Len(t, key, len("objects/")+2+1+62)
}

func TestCustomFuncGenerator(t *testing.T) {
	g := NewCustomFuncGenerator(func(ownerID, id string) string { return "x/" + id })
	assert.Equal(t, "x/"+id, g.GenerateKey(owner, id))
}

func TestNewFromLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   Generator
	}{
		{"", &FlatGenerator{}},
		{"flat", &FlatGenerator{}},
		{"Sharded", &GitLikeGenerator{ShardLength: 2}},
		{"hashed", &HashedGenerator{ShardLength: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			g, err := NewFromLayout(tt.layout)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g)
		})
	}

	_, err := NewFromLayout("nested")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(owner, id))

	invalid := []struct{ owner, id string }{
		{"", id},
		{owner, ""},
		{"..", id},
		{owner, "."},
		{"a/b", id},
		{owner, `..\..\etc`},
		{owner, "x\x00y"},
	}
	for _, tt := range invalid {
		assert.ErrorIs(t, Validate(tt.owner, tt.id), ErrInvalidKey, "%q/%q", tt.owner, tt.id)
	}
}
