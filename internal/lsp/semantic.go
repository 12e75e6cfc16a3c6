package lsp

import (
	"slices"

	"github.com/alecthomas/participle/v2/lexer"
)

// SemanticTokenTypes is the token type legend advertised to clients.
var SemanticTokenTypes = []string{
	"keyword",
	"variable",
	"number",
	"operator",
	"comment",
}

// SemanticTokenModifiers is the modifier legend advertised to clients.
var SemanticTokenModifiers = []string{
	"declaration",
	"readonly",
}

var sourceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Keyword", Pattern: `(?:if|else|while|for|assert)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Operator", Pattern: `:=|==|!=|<=|>=|[-+*/%<>!]`},
	{Name: "Punct", Pattern: `[(){}\[\];]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Other", Pattern: `.`},
})

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into SemanticTokenTypes
// TokenModifiers is a bitmask over SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

// collectSemanticTokens classifies the tokens of source. Assignment targets
// carry the declaration modifier and array names the readonly modifier.
func collectSemanticTokens(source string) []SemanticToken {
	lex, err := sourceLexer.LexString("", source)
	if err != nil {
		return nil
	}
	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil
	}

	symbols := lexer.SymbolsByRune(sourceLexer)
	var significant []lexer.Token
	for _, tok := range all {
		if tok.EOF() || symbols[tok.Type] == "Whitespace" {
			continue
		}
		significant = append(significant, tok)
	}

	var tokens []SemanticToken
	for i, tok := range significant {
		var next string
		if i+1 < len(significant) {
			next = significant[i+1].Value
		}

		tokenType, modifiers := "", 0
		switch symbols[tok.Type] {
		case "Comment":
			tokenType = "comment"
		case "Keyword":
			tokenType = "keyword"
		case "Number":
			tokenType = "number"
		case "Operator":
			tokenType = "operator"
		case "Ident":
			tokenType = "variable"
			switch next {
			case ":=":
				modifiers = modifier("declaration")
			case "[":
				modifiers = modifier("readonly")
			}
		default:
			continue
		}
		tokens = append(tokens, SemanticToken{
			Line:           uint32(tok.Pos.Line - 1),   // LSP uses 0-based line numbers
			StartChar:      uint32(tok.Pos.Column - 1), // LSP uses 0-based column numbers
			Length:         uint32(len(tok.Value)),
			TokenType:      slices.Index(SemanticTokenTypes, tokenType),
			TokenModifiers: modifiers,
		})
	}
	return tokens
}

func modifier(name string) int {
	return 1 << slices.Index(SemanticTokenModifiers, name)
}

// encodeSemanticTokens encodes tokens into the LSP wire format using
// delta-line and delta-start compression.
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	var data []uint32
	var prevLine, prevStart uint32
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaStart := token.StartChar
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		}
		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}
	return data
}

// identifiers returns the distinct variable names of source in order of
// first appearance.
func identifiers(source string) []string {
	var names []string
	lines := splitLines(source)
	for _, token := range collectSemanticTokens(source) {
		if SemanticTokenTypes[token.TokenType] != "variable" {
			continue
		}
		line := lines[token.Line]
		name := line[token.StartChar : token.StartChar+token.Length]
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}
