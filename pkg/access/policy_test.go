package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/docsync/pkg/paths"
)

func TestCanSeeRootFolder(t *testing.T) {
	juan := Context{Role: Standard, DisplayName: "Juan Perez"}
	admin := Context{Role: Privileged, DisplayName: "Admin"}

	assert.True(t, CanSeeRootFolder(juan, "Juan Perez - Documentos"))
	assert.False(t, CanSeeRootFolder(juan, "Maria Lopez - Documentos"))
	assert.True(t, CanSeeRootFolder(admin, "Juan Perez - Documentos"))
	assert.True(t, CanSeeRootFolder(admin, "Maria Lopez - Documentos"))
}

func TestCanSeeRootFolder_NormalizesNames(t *testing.T) {
	juan := Context{Role: Standard, DisplayName: "Juan Pérez"}

	assert.True(t, CanSeeRootFolder(juan, "JUAN PEREZ - Documentos"))
}

func TestCanSeeRootFolder_SubstringOverMatch(t *testing.T) {
	// "Ana" is contained in "Mariana", which the name rule accepts.
	ana := Context{Role: Standard, DisplayName: "Ana"}

	assert.True(t, CanSeeRootFolder(ana, "Mariana Ruiz - Documentos"))
}

func TestCanSeeRootFolder_EmptyNameSeesNothing(t *testing.T) {
	anon := Context{Role: Standard}

	assert.False(t, CanSeeRootFolder(anon, "Juan Perez - Documentos"))
}

func TestCanSeePath(t *testing.T) {
	juan := Context{Role: Standard, DisplayName: "Juan Perez"}

	assert.True(t, CanSeePath(juan, paths.Clean("/Juan Perez - Documentos/2024/cert.pdf")))
	assert.True(t, CanSeePath(juan, paths.Clean("/Juan Perez - Documentos/other-owner/cert.pdf")))
	assert.False(t, CanSeePath(juan, paths.Clean("/Maria Lopez - Documentos/cert.pdf")))
	assert.False(t, CanSeePath(juan, paths.Clean("/loose.pdf")))
	assert.True(t, CanSeePath(Context{Role: Privileged}, paths.Clean("/loose.pdf")))
}

func TestCanSeeObject_Uploader(t *testing.T) {
	juan := Context{Role: Standard, DisplayName: "Juan Perez"}
	p := paths.Clean("/Maria Lopez - Documentos/cert.pdf")

	assert.False(t, CanSeeObject(juan, p, "maria"))
	assert.True(t, CanSeeObject(juan, p, "juan perez"))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Admin")
	require.NoError(t, err)
	assert.Equal(t, Privileged, r)

	r, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, Standard, r)

	_, err = ParseRole("root")
	assert.Error(t, err)
}
