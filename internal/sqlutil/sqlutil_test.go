package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"articles", "`articles`"},
		{"article_tags", "`article_tags`"},
		{"order", "`order`"}, // reserved word
		{"weird`name", "`weird``name`"},
		{"", "``"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteIdentifier(tt.input))
		})
	}
}

func TestQuoteString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"articles", "'articles'"},
		{"it's", "'it''s'"},
		{"a'b'c", "'a''b''c'"},
		{"", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteString(tt.input))
		})
	}
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "articles.author_id", Qualify("articles", "author_id"))
	assert.Equal(t, "articles_to_people_people.id", Qualify("articles_to_people_people", "id"))
}
