// Package pddllex tokenises PDDL 1.2-style S-expression source text.
// It is grounded on the structure of funvibe/funxy's internal/lexer: a
// single rune-at-a-time scanner tracking line/column, with NextToken
// returning one token.Token per call.
package pddllex

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/concurrent-pddl/compiler/internal/token"
)

// Lexer scans PDDL source text into a stream of token.Token values.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == ';' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func newToken(tt token.Type, ch rune, line, col int) token.Token {
	lex := string(ch)
	return token.Token{Type: tt, Lexeme: lex, Literal: lex, Line: line, Column: col}
}

// NextToken returns the next lexical token, or an EOF token once input is
// exhausted.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.column
	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOF, Line: line, Column: col}
	case l.ch == '(':
		l.readChar()
		return newToken(token.LPAREN, '(', line, col)
	case l.ch == ')':
		l.readChar()
		return newToken(token.RPAREN, ')', line, col)
	case l.ch == '?':
		return l.readVariable(line, col)
	case l.ch == '-' && isDigit(l.peekChar()):
		return l.readNumber(line, col)
	case l.ch == '-':
		l.readChar()
		return newToken(token.HYPHEN, '-', line, col)
	case isSymbolStart(l.ch):
		return l.readSymbol(line, col)
	case isDigit(l.ch):
		return l.readNumber(line, col)
	default:
		ch := l.ch
		l.readChar()
		return newToken(token.ILLEGAL, ch, line, col)
	}
}

func (l *Lexer) readVariable(line, col int) token.Token {
	var sb strings.Builder
	sb.WriteRune(l.ch) // '?'
	l.readChar()
	for isSymbolRune(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	lex := sb.String()
	return token.Token{Type: token.VARIABLE, Lexeme: lex, Literal: strings.ToLower(lex), Line: line, Column: col}
}

func (l *Lexer) readSymbol(line, col int) token.Token {
	var sb strings.Builder
	sb.WriteRune(l.ch) // the start rune isSymbolStart accepted
	l.readChar()
	for isSymbolRune(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	lex := sb.String()
	return token.Token{Type: token.SYMBOL, Lexeme: lex, Literal: strings.ToLower(lex), Line: line, Column: col}
}

func (l *Lexer) readNumber(line, col int) token.Token {
	var sb strings.Builder
	if l.ch == '-' {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	for isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		sb.WriteRune(l.ch)
		l.readChar()
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	lex := sb.String()
	return token.Token{Type: token.NUMBER, Lexeme: lex, Literal: lex, Line: line, Column: col}
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isSymbolStart(ch rune) bool {
	if ch == 0 || ch == '(' || ch == ')' || ch == '?' {
		return false
	}
	return unicode.IsLetter(ch) || ch == '_' || ch == '=' || ch == '<' || ch == '>' || ch == '+' || ch == '/' || ch == '*' || ch == ':'
}

// isSymbolRune reports whether ch may appear inside a bareword after its
// first character: letters, digits, and the punctuation PDDL identifiers
// commonly use (e.g. "agent-order-count", "block_1").
func isSymbolRune(ch rune) bool {
	if ch == 0 || ch == '(' || ch == ')' {
		return false
	}
	if unicode.IsSpace(ch) {
		return false
	}
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '-' || ch == '_' || ch == '='
}
