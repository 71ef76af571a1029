package search

import "strings"

// Document is the searchable projection of a record or listing entry.
type Document struct {
	DisplayName string
	RawName     string
	UploadedBy  string
	ParentLabel string
	Keywords    []string
}

func (d Document) haystack() string {
	parts := make([]string, 0, 4+len(d.Keywords))
	parts = append(parts, d.DisplayName, d.RawName, d.UploadedBy, d.ParentLabel)
	parts = append(parts, d.Keywords...)
	return Normalize(strings.Join(parts, " "))
}

// Terms normalizes query and splits it on whitespace.
func Terms(query string) []string {
	return strings.Fields(Normalize(query))
}

// Matches reports whether every query term is a substring of the
// document's searchable text. An empty query matches everything.
func Matches(doc Document, query string) bool {
	return MatchesTerms(doc, Terms(query))
}

func MatchesTerms(doc Document, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	hay := doc.haystack()
	for _, term := range terms {
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

// MatchesName applies the same AND semantics to a bare name, used for
// folder entries which carry no record.
func MatchesName(name string, query string) bool {
	return MatchesTerms(Document{RawName: name}, Terms(query))
}
