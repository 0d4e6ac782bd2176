// Package lexer turns source text into a token stream. Like the rest of
// the front end it is an external collaborator to the IR generator
// (spec.md §1); it is implemented here, in the teacher's idiom, so the
// repository is a complete, runnable compiler.
package lexer

import (
	"strings"

	"github.com/xyproto/furnc/internal/diag"
	"github.com/xyproto/furnc/internal/token"
)

// Lexer scans a rune slice into token.Tokens, tracking line/column for
// diagnostics.
type Lexer struct {
	file   string
	input  []rune
	pos    int
	line   int
	column int
}

// New creates a Lexer over the given source text, attributing diagnostics
// to fileName.
func New(fileName, source string) *Lexer {
	return &Lexer{
		file:   fileName,
		input:  []rune(source),
		pos:    0,
		line:   1,
		column: 1,
	}
}

// Tokenize scans the entire input, returning every token in order, or the
// first LexError encountered.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token

	for !l.isEOF() {
		switch {
		case l.isSpace():
			l.advance()

		case l.isLineComment():
			l.skipLineComment()

		case l.isAlpha():
			line, col := l.line, l.column
			ident := l.lexIdent()
			if kw, ok := token.Keywords[ident]; ok {
				toks = append(toks, token.Fixed(kw, line, col))
			} else {
				toks = append(toks, token.Ident(ident, line, col))
			}

		case l.isDigit():
			line, col := l.line, l.column
			n := l.lexInt()
			toks = append(toks, token.IntLit(n, line, col))

		case l.peek() == '"':
			line, col := l.line, l.column
			s, err := l.lexString()
			if err != nil {
				return nil, err
			}
			toks = append(toks, token.StrLit(s, line, col))

		default:
			line, col := l.line, l.column
			sym, ok := l.lexSymbol()
			if !ok {
				if l.isEOF() {
					return nil, diag.LexError(l.loc(line, col), "unexpected end of file")
				}
				return nil, diag.LexError(l.loc(line, col), "unexpected character %q", l.peek())
			}
			toks = append(toks, token.Fixed(sym, line, col))
		}
	}

	return toks, nil
}

func (l *Lexer) loc(line, col int) diag.Location {
	return diag.Location{File: l.file, Line: line, Column: col}
}

func (l *Lexer) isEOF() bool { return l.pos >= len(l.input) }

func (l *Lexer) peek() rune { return l.input[l.pos] }

func (l *Lexer) peekAt(offset int) (rune, bool) {
	if l.pos+offset >= len(l.input) {
		return 0, false
	}
	return l.input[l.pos+offset], true
}

func (l *Lexer) advance() rune {
	ch := l.peek()
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) isSpace() bool {
	return !l.isEOF() && (l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\n' || l.peek() == '\r')
}

func (l *Lexer) isLineComment() bool {
	if l.isEOF() {
		return false
	}
	if l.peek() != '/' {
		return false
	}
	next, ok := l.peekAt(1)
	return ok && next == '/'
}

func (l *Lexer) skipLineComment() {
	for !l.isEOF() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) isAlpha() bool {
	if l.isEOF() {
		return false
	}
	ch := l.peek()
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func (l *Lexer) isAlphaNumeric() bool {
	if l.isEOF() {
		return false
	}
	ch := l.peek()
	return l.isAlpha() || (ch >= '0' && ch <= '9')
}

func (l *Lexer) isDigit() bool {
	return !l.isEOF() && l.peek() >= '0' && l.peek() <= '9'
}

func (l *Lexer) lexIdent() string {
	var sb strings.Builder
	for l.isAlphaNumeric() {
		sb.WriteRune(l.advance())
	}
	return sb.String()
}

func (l *Lexer) lexInt() uint64 {
	var n uint64
	for l.isDigit() {
		ch := l.advance()
		n = n*10 + uint64(ch-'0')
	}
	return n
}

func (l *Lexer) lexString() (string, error) {
	startLine, startCol := l.line, l.column
	l.advance() // opening quote

	var sb strings.Builder
	for {
		if l.isEOF() {
			return "", diag.LexError(l.loc(startLine, startCol), "unterminated string literal")
		}
		ch := l.advance()
		if ch == '"' {
			return sb.String(), nil
		}
		if ch == '\\' {
			if l.isEOF() {
				return "", diag.LexError(l.loc(startLine, startCol), "unterminated string literal")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				return "", diag.LexError(l.loc(l.line, l.column), "unknown escape sequence '\\%c'", esc)
			}
			continue
		}
		sb.WriteRune(ch)
	}
}

// lexSymbol performs the teacher-style longest-match lookup: grow a
// candidate string one rune at a time while some symbol starts with it,
// and accept the longest candidate that is itself a complete symbol.
func (l *Lexer) lexSymbol() (token.Kind, bool) {
	var key strings.Builder
	var best token.Kind
	var bestLen int
	haveBest := false

	for i := 0; ; i++ {
		ch, ok := l.peekAt(i)
		if !ok {
			break
		}
		key.WriteRune(ch)
		candidate := key.String()

		if kind, ok := token.Symbols[candidate]; ok {
			best = kind
			bestLen = i + 1
			haveBest = true
		}

		if !anySymbolHasPrefix(candidate) {
			break
		}
	}

	if !haveBest {
		return 0, false
	}
	for i := 0; i < bestLen; i++ {
		l.advance()
	}
	return best, true
}

func anySymbolHasPrefix(prefix string) bool {
	for sym := range token.Symbols {
		if strings.HasPrefix(sym, prefix) {
			return true
		}
	}
	return false
}
