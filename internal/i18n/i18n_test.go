package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupWithFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en.yaml": {Data: []byte("menu:\n  surf: Surf\n  hello: \"Hi, %s\"\nlimit: 3\n")},
		"l/ru.yaml": {Data: []byte("menu:\n  surf: Искать\n")},
	}
	c, err := LoadFS(fsys, "l")
	require.NoError(t, err)

	ru := c.Lang("ru-RU")
	assert.Equal(t, "Искать", ru.T("menu.surf"))
	assert.Equal(t, "Hi, Ann", ru.T("menu.hello", "Ann"))
	assert.Equal(t, "3", c.Lang("en").T("limit"))
	assert.Equal(t, "menu.unknown", ru.T("menu.unknown"))
	assert.Equal(t, "x", Localizer{}.T("x"))
}

func TestLoadRequiresDefaultCatalog(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{"l/ru.yaml": {Data: []byte("a: b\n")}}, "l")
	assert.Error(t, err)
}

func TestEmbeddedCatalogLoads(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.True(t, c.Has("menu.surf"))
	assert.True(t, c.Has("errors.session_expired"))
}
