package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// symbolChars are the SMT-LIB2 simple symbol characters besides letters and
// digits.
const symbolChars = `~!@$%^&*_+=<>.?/\-`

var SExprLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{Name: "Comment", Pattern: `;[^\n]*`, Action: nil},

		{Name: "String", Pattern: `"(?:[^"]|"")*"`, Action: nil},

		// Numerals come before symbols so "12" never lexes as a symbol
		{Name: "Integer", Pattern: `[0-9]+`, Action: nil},

		// Quoted symbols, keywords and simple symbols
		{Name: "Symbol", Pattern: `\|[^|]*\||:?[a-zA-Z` + symbolChars + `][a-zA-Z0-9` + symbolChars + `]*`, Action: nil},

		{Name: "Punctuation", Pattern: `[()]`, Action: nil},

		// Whitespace
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
	},
})
