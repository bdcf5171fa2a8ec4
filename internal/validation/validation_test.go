package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title  string  `json:"title" validate:"notblank"`
	Rating int     `json:"rating" validate:"min=1,max=5"`
	ISBN   *string `json:"isbn,omitempty" validate:"omitempty,isbn"`
	Email  string  `json:"email,omitempty" validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	isbn := "978-0-13-468599-1"
	badISBN := "123"

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Struct(sample{Title: "Dune", Rating: 4, ISBN: &isbn}))
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := Struct(sample{Title: "  ", Rating: 9, ISBN: &badISBN, Email: "nope"})
		require.Error(t, err)

		errs, ok := As(err)
		require.True(t, ok)

		fields := map[string]string{}
		for _, fe := range errs {
			fields[fe.Field] = fe.Message
		}
		assert.Equal(t, "title is required", fields["title"])
		assert.Equal(t, "rating must be at most 5", fields["rating"])
		assert.Contains(t, fields["isbn"], "valid ISBN")
		assert.Contains(t, fields["email"], "valid email")
	})
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", New("q", "q is required"))

	errs, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, Errors{{Field: "q", Message: "q is required"}}, errs)

	_, ok = As(fmt.Errorf("other"))
	assert.False(t, ok)
}
