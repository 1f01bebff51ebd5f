package fragments_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-fragments/pkg/fragments"
)

const testOwner = "11d4c22e42c8f61feaba154683dea407b101cfd90987dda9e342843263ca420a"

func TestNewFragment(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		before := time.Now().UTC()
		f, err := fragments.NewFragment(fragments.FragmentParams{OwnerID: testOwner, Type: "text/plain"})
		require.NoError(t, err)

		_, err = uuid.Parse(f.ID)
		assert.NoError(t, err)
		assert.Equal(t, testOwner, f.OwnerID)
		assert.Equal(t, int64(0), f.Size)
		assert.False(t, f.Created.Before(before))
		assert.Equal(t, f.Created, f.Updated)
		assert.Equal(t, time.UTC, f.Created.Location())
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		updated := created.Add(time.Hour)
		f, err := fragments.NewFragment(fragments.FragmentParams{
			ID:      "30a84843-0cd4-4975-95ba-b96112aea189",
			OwnerID: testOwner,
			Type:    "text/plain; charset=utf-8",
			Size:    1,
			Created: created,
			Updated: updated,
		})
		require.NoError(t, err)
		assert.Equal(t, "30a84843-0cd4-4975-95ba-b96112aea189", f.ID)
		assert.Equal(t, "text/plain; charset=utf-8", f.Type)
		assert.Equal(t, int64(1), f.Size)
		assert.Equal(t, created, f.Created)
		assert.Equal(t, updated, f.Updated)
	})

	t.Run("ids are unique", func(t *testing.T) {
		a, err := fragments.NewFragment(fragments.FragmentParams{OwnerID: testOwner, Type: "text/plain"})
		require.NoError(t, err)
		b, err := fragments.NewFragment(fragments.FragmentParams{OwnerID: testOwner, Type: "text/plain"})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	invalid := []struct {
		name   string
		params fragments.FragmentParams
	}{
		{"missing owner", fragments.FragmentParams{Type: "text/plain"}},
		{"blank owner", fragments.FragmentParams{OwnerID: "  ", Type: "text/plain"}},
		{"missing type", fragments.FragmentParams{OwnerID: testOwner}},
		{"unsupported type", fragments.FragmentParams{OwnerID: testOwner, Type: "application/msword"}},
		{"negative size", fragments.FragmentParams{OwnerID: testOwner, Type: "text/plain", Size: -1}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			f, err := fragments.NewFragment(tt.params)
			assert.ErrorIs(t, err, fragments.ErrValidation)
			assert.Nil(t, f)
		})
	}
}

func TestFragmentMimeType(t *testing.T) {
	tests := []struct {
		typ      string
		mimeType string
		isText   bool
		formats  []string
	}{
		{"text/plain", "text/plain", true, []string{"text/plain"}},
		{"text/plain; charset=utf-8", "text/plain", true, []string{"text/plain"}},
		{"text/html; charset=utf-8", "text/html", true, []string{"text/html", "text/plain"}},
		{"text/markdown", "text/markdown", true, []string{"text/markdown", "text/html", "text/plain"}},
		{"application/json", "application/json", false, []string{"application/json", "text/plain"}},
		{"image/png", "image/png", false, []string{"image/png", "image/jpeg", "image/webp", "image/gif"}},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			f, err := fragments.NewFragment(fragments.FragmentParams{OwnerID: testOwner, Type: tt.typ})
			require.NoError(t, err)

			assert.Equal(t, tt.mimeType, f.MimeType())
			assert.Equal(t, tt.isText, f.IsText())
			assert.ElementsMatch(t, tt.formats, f.Formats())
			assert.NoError(t, f.Validate())
		})
	}
}

func TestFragmentValidate(t *testing.T) {
	f, err := fragments.NewFragment(fragments.FragmentParams{OwnerID: testOwner, Type: "text/plain"})
	require.NoError(t, err)

	f.Size = -5
	assert.ErrorIs(t, f.Validate(), fragments.ErrValidation)

	f.Size = 0
	f.ID = ""
	assert.ErrorIs(t, f.Validate(), fragments.ErrValidation)
}

func TestFragmentCloneDoesNotAlias(t *testing.T) {
	f, err := fragments.NewFragment(fragments.FragmentParams{OwnerID: testOwner, Type: "text/plain", Size: 3})
	require.NoError(t, err)

	c := f.Clone()
	c.Size = 7
	assert.Equal(t, int64(3), f.Size)

	var nilFragment *fragments.Fragment
	assert.Nil(t, nilFragment.Clone())
}

func TestFragmentJSON(t *testing.T) {
	created := time.Date(2021, 11, 2, 15, 9, 50, 108000000, time.UTC)
	f := &fragments.Fragment{
		ID:      "30a84843-0cd4-4975-95ba-b96112aea189",
		OwnerID: testOwner,
		Created: created,
		Updated: created,
		Type:    "text/plain",
		Size:    256,
	}

	raw, err := json.Marshal(f)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "30a84843-0cd4-4975-95ba-b96112aea189", fields["id"])
	assert.Equal(t, testOwner, fields["ownerId"])
	assert.Equal(t, "2021-11-02T15:09:50.108Z", fields["created"])
	assert.Equal(t, "text/plain", fields["type"])
	assert.Equal(t, float64(256), fields["size"])
}
