package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTitle(t *testing.T) {
	assert.True(t, IsTitle("Foo and Bar [article]"))
	assert.True(t, IsTitle("[article]"))
	assert.False(t, IsTitle("Foo and Bar [Article]"))
	assert.False(t, IsTitle(""))
}

func TestIsJournal(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"Foo Journal, Vol. 12, Issue 3, pp. 45-67", true},
		{"Foo Journal pp. 45-67", true},
		{"Foo Journal Vol. 2", true},
		{"Vol. 2", false},
		{"Foo Journal", false},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			assert.Equal(t, tt.want, IsJournal(tt.cell))
		})
	}
}

func TestIsAuthor(t *testing.T) {
	tests := []struct {
		name  string
		cell  string
		index int
		want  bool
	}{
		{"citation annotation at any index", "Smith, John (Cited 5 times)", 7, true},
		{"citation words override digits", "Cited 12 times", 0, true},
		{"plain name at third cell", "Smith, John", 2, true},
		{"plain name at fourth cell", "Smith, John; Doe, Jane", 3, true},
		{"plain name at wrong position", "Smith, John", 1, false},
		{"no comma", "John Smith", 2, false},
		{"digit and parens", "42 (some code)", 2, false},
		{"digit and parens with comma", "42, (some code)", 3, false},
		{"parens only", "Smith, John (ed.)", 2, false},
		{"journal shaped", "Smith, Jones pp. x", 2, false},
		{"title shaped", "Smith, Jones [article]", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthor(tt.cell, tt.index))
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultRules())

	got := c.Classify("Some Title [article]", 0)
	assert.Equal(t, Classification{Title: true}, got)
	assert.Equal(t, []Kind{KindTitle}, got.Kinds())

	got = c.Classify("Foo Law Review, Vol. 1", 1)
	assert.Equal(t, []Kind{KindJournal}, got.Kinds())

	got = c.Classify("Doe, Jane", 2)
	assert.Equal(t, []Kind{KindAuthor}, got.Kinds())

	got = c.Classify("1 (1990)", 2)
	assert.Empty(t, got.Kinds())

	got = c.Classify("Review [article], Vol. 2", 0)
	assert.Equal(t, []Kind{KindTitle, KindJournal}, got.Kinds())
}

func TestSelectLastMatchWins(t *testing.T) {
	c := NewClassifier(DefaultRules())
	cells := []string{"First [article]", "Journal, Vol. 1", "Second [article]"}

	got, ambiguous := c.Select(cells, KindTitle)
	assert.Equal(t, "Second [article]", got)
	assert.Equal(t, []Ambiguity{{Kind: KindTitle, Previous: "First [article]", Current: "Second [article]"}}, ambiguous)

	got, ambiguous = c.Select(cells, KindJournal)
	assert.Equal(t, "Journal, Vol. 1", got)
	assert.Empty(t, ambiguous)

	got, ambiguous = c.Select(cells, KindAuthor)
	assert.Equal(t, "", got)
	assert.Empty(t, ambiguous)
}

func TestCustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.AuthorPositions = []int{1}
	rules.TitleMarker = "[chapter]"
	c := NewClassifier(rules)

	assert.True(t, c.IsAuthor("Smith, John", 1))
	assert.False(t, c.IsAuthor("Smith, John", 2))
	assert.True(t, c.IsTitle("A Chapter [chapter]"))
	assert.False(t, c.IsTitle("An Article [article]"))
}
