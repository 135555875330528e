package parser

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lex splits source text into tokens, dropping comments, compiler
// directives (`define, `include, ...) and whitespace. Line numbers are
// preserved for error reporting.
func lex(file string, src []byte) ([]token, error) {
	var toks []token
	line := 1
	i := 0
	n := len(src)

	for i < n {
		c := src[i]

		switch {
		case c == '\n':
			line++
			i++

		case c == ' ' || c == '\t' || c == '\r':
			i++

		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && src[i+1] == '*':
			start := line
			i += 2
			for {
				if i+1 >= n {
					return nil, &ParseError{File: file, Line: start, Msg: "unterminated block comment"}
				}
				if src[i] == '\n' {
					line++
				}
				if src[i] == '*' && src[i+1] == '/' {
					i += 2
					break
				}
				i++
			}

		case c == '`':
			// Compiler directives are line-oriented; skip to end of line.
			for i < n && src[i] != '\n' {
				i++
			}

		case c == '"':
			start := line
			i++
			for {
				if i >= n {
					return nil, &ParseError{File: file, Line: start, Msg: "unterminated string literal"}
				}
				if src[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				if src[i] == '\n' {
					line++
				}
				if src[i] == '"' {
					i++
					break
				}
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: `""`, line: start})

		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(src[start:i]), line: line})

		case isDigit(c) || c == '\'':
			start := i
			i++
			for i < n && isLiteralPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: string(src[start:i]), line: line})

		default:
			toks = append(toks, token{kind: tokPunct, text: string(c), line: line})
			i++
		}
	}

	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isLiteralPart accepts the tail of sized literals like 8'hF_F or 'bz.
func isLiteralPart(c byte) bool {
	return isIdentPart(c) || c == '\''
}

// joinTokens reconstructs source text from a token span. A space is
// inserted only between two adjacent word tokens, so bracketed
// expressions come back byte-for-byte ("[WIDTH-1:0]") while compound
// types keep their separation ("logic signed").
func joinTokens(toks []token) string {
	var out []byte
	prevWord := false
	for _, t := range toks {
		word := t.kind != tokPunct
		if word && prevWord {
			out = append(out, ' ')
		}
		out = append(out, t.text...)
		prevWord = word
	}
	return string(out)
}
