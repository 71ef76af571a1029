package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "calibracion bomba", Normalize("Calibración BOMBA"))
	assert.Equal(t, "muller", Normalize("Müller"))
	assert.Equal(t, "", Normalize(""))
}

func TestTokens(t *testing.T) {
	tokens := Tokens("Folio_2024-Pump.pdf")

	assert.Equal(t, []string{"2024", "folio", "folio_2024-pump.pdf", "pdf", "pump"}, tokens)
}

func TestTokens_DropsShortAndDuplicates(t *testing.T) {
	tokens := Tokens("ab pump PUMP x.pdf")

	assert.NotContains(t, tokens, "ab")
	assert.NotContains(t, tokens, "x")
	assert.Contains(t, tokens, "pump")
	assert.Contains(t, tokens, "ab pump pump x.pdf")

	count := 0
	for _, tok := range tokens {
		if tok == "pump" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Empty(t, Tokens("  "))
}

func TestMatches_AndSemantics(t *testing.T) {
	doc := Document{Keywords: []string{"folio", "2024", "pump"}}

	assert.True(t, Matches(doc, "2024 pump"))
	assert.False(t, Matches(doc, "2024 valve"))
	assert.True(t, Matches(doc, ""))
	assert.True(t, Matches(doc, "   "))
}

func TestMatches_AllFieldsAndDiacritics(t *testing.T) {
	doc := Document{
		DisplayName: "Certificado.pdf",
		RawName:     "F-001_Certificado.pdf",
		UploadedBy:  "Ana Núñez",
		ParentLabel: "Juan Perez - Documentos",
	}

	assert.True(t, Matches(doc, "nunez certif"))
	assert.True(t, Matches(doc, "F-001"))
	assert.True(t, Matches(doc, "juan CERTIFICADO"))
	assert.False(t, Matches(doc, "maria"))
}

func TestMatchesName(t *testing.T) {
	assert.True(t, MatchesName("Juan Pérez - Documentos", "perez docu"))
	assert.False(t, MatchesName("Juan Pérez - Documentos", "lopez"))
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("Name", "DESC")
	require.NoError(t, err)
	assert.Equal(t, Order{Field: SortByName, Desc: true}, o)

	o, err = ParseOrder("", "")
	require.NoError(t, err)
	assert.Equal(t, Order{}, o)

	_, err = ParseOrder("size", "asc")
	assert.Error(t, err)
	_, err = ParseOrder("name", "sideways")
	assert.Error(t, err)
}

func TestSort(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	type item struct {
		name    string
		created time.Time
	}
	items := []item{
		{"beta", base.Add(2 * time.Hour)},
		{"Álpha", base.Add(3 * time.Hour)},
		{"gamma", base},
	}
	keys := func(i item) Keys { return Keys{Name: i.name, CreatedAt: i.created} }

	Sort(items, Order{Field: SortByName}, keys)
	assert.Equal(t, "Álpha", items[0].name)
	assert.Equal(t, "gamma", items[2].name)

	Sort(items, Order{Field: SortByCreated, Desc: true}, keys)
	assert.Equal(t, "Álpha", items[0].name)
	assert.Equal(t, "gamma", items[2].name)

	before := append([]item(nil), items...)
	Sort(items, Order{}, keys)
	assert.Equal(t, before, items)
}
