package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMDV2EscapesSpecials(t *testing.T) {
	assert.Equal(t, `Anna, 27 \- Riga\.`, MDV2("Anna, 27 - Riga."))
	assert.Equal(t, `\*bold\* \_x\_`, MDV2("*bold* _x_"))
	assert.Equal(t, "plain", MDV2("plain"))
}

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("a_b*c", MarkdownV1)
	require.NoError(t, err)
	assert.Equal(t, `a\_b\*c`, got)

	_, err = EscapeMarkdown("x", 3)
	assert.Error(t, err)
}

func TestDeref(t *testing.T) {
	v := 5
	assert.Equal(t, 5, Deref(&v, 1))
	assert.Equal(t, "none", Deref[string](nil, "none"))
}
