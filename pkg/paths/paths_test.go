package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		raw  string
		want Path
	}{
		{"", Root},
		{"/", Root},
		{"clients/X", "/clients/X"},
		{"/clients/X/", "/clients/X"},
		{"clients//X/./a.pdf", "/clients/X/a.pdf"},
		{`clients\X`, "/clients/X"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.raw), "raw=%q", tt.raw)
	}
}

func TestPath_Navigation(t *testing.T) {
	p := Clean("/clients/X/report.pdf")

	assert.Equal(t, []string{"clients", "X", "report.pdf"}, p.Segments())
	assert.Equal(t, "report.pdf", p.Base())
	assert.Equal(t, Path("/clients/X"), p.Parent())
	assert.Equal(t, Root, Clean("/a").Parent())
	assert.Equal(t, Root, Root.Parent())
	assert.Equal(t, 3, p.Depth())
	assert.Equal(t, "clients/X/report.pdf", p.ObjectKey())
	assert.Equal(t, p, FromObjectKey(p.ObjectKey()))
}

func TestPath_IsWithin(t *testing.T) {
	assert.True(t, Clean("/a/b/c").IsWithin("/a/b"))
	assert.True(t, Clean("/a").IsWithin(Root))
	assert.False(t, Clean("/a/b").IsWithin("/a/b"))
	assert.False(t, Clean("/a/bc").IsWithin("/a/b"))
	assert.False(t, Root.IsWithin(Root))
}

func TestRebase(t *testing.T) {
	assert.Equal(t, Path("/clients/Y/sub/a.pdf"), Rebase("/clients/X/sub/a.pdf", "/clients/X", "/clients/Y"))
	assert.Equal(t, Path("/clients/Y"), Rebase("/clients/X", "/clients/X", "/clients/Y"))
	assert.Equal(t, Path("/dest/a.pdf"), Rebase("/a.pdf", Root, "/dest"))
}

func TestEncode_Injective(t *testing.T) {
	inputs := []Path{
		Root,
		"/a",
		"/a/b",
		"/a%2Fb",
		"/a%252Fb",
		"/a%/b",
		"/a/%2F",
		"/a b/c",
		"/a_b/c",
		"/a__b",
		"/%25",
		"/%",
	}

	seen := make(map[string]Path)
	for _, p := range inputs {
		key := Encode(p)
		prev, dup := seen[key]
		require.False(t, dup, "collision between %q and %q on key %q", prev, p, key)
		seen[key] = p

		assert.NotContains(t, key, "/")
		assert.Equal(t, p, Decode(key), "round trip of %q", p)
	}
}

func TestEncode_InjectiveGenerated(t *testing.T) {
	alphabet := []string{"a", "/", "%", "2", "F", "5"}
	seen := make(map[string]Path)

	var walk func(prefix string, depth int)
	walk = func(prefix string, depth int) {
		if depth == 0 {
			p := Clean(prefix)
			if string(p) != "/"+prefix && prefix != "" {
				return // not canonical
			}
			key := Encode(p)
			if prev, ok := seen[key]; ok && prev != p {
				t.Fatalf("collision: %q and %q -> %q", prev, p, key)
			}
			seen[key] = p
			return
		}
		for _, c := range alphabet {
			walk(prefix+c, depth-1)
		}
	}
	for depth := 1; depth <= 4; depth++ {
		walk("", depth)
	}
	assert.NotEmpty(t, seen)
}

func TestSanitizer_Clean(t *testing.T) {
	s := DefaultSanitizer()

	tests := []struct {
		raw  string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"upload_report.pdf", "report.pdf"},
		{"F-2024-001_Certificado bomba.pdf", "Certificado bomba.pdf"},
		{"Juan Perez_Certificado.pdf", "Juan Perez_Certificado.pdf"},
		{"123__Hoja de calibracion.xlsx", "Hoja de calibracion.xlsx"},
		{"Juan Perez__copia_final.pdf", "copia_final.pdf"},
		{"upload_42_pump.pdf", "pump.pdf"},
		{"abc_def_ghi.pdf", "def_ghi.pdf"},
		{"123_", "123_"},
		{"upload_", "upload_"},
		{"__", "__"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Clean(tt.raw), "raw=%q", tt.raw)
	}
}

func TestParentLabel(t *testing.T) {
	assert.Equal(t, RootLabel, ParentLabel("/report.pdf"))
	assert.Equal(t, "Juan Perez - Documentos", ParentLabel("/Juan Perez - Documentos/report.pdf"))
	assert.Equal(t, "2024", ParentLabel("/clients/X/2024/a.pdf"))
}
