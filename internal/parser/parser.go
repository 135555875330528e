package parser

import (
	"fmt"
)

// ParseError reports a malformed declaration shape, unbalanced
// delimiters, or an unterminated module. It is fatal for the file.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

var directions = map[string]bool{
	"input":  true,
	"output": true,
	"inout":  true,
}

// blockClosers maps a block-opening keyword to the keyword that closes
// it. Everything between the two is skipped: the parser is a
// structural extractor and never looks inside procedural code.
var blockClosers = map[string]string{
	"begin":      "end",
	"case":       "endcase",
	"casex":      "endcase",
	"casez":      "endcase",
	"function":   "endfunction",
	"task":       "endtask",
	"fork":       "join",
	"specify":    "endspecify",
	"property":   "endproperty",
	"sequence":   "endsequence",
	"covergroup": "endgroup",
	"clocking":   "endclocking",
}

// ignoredStatements are statement-leading keywords that can never start
// a declaration or an instantiation.
var ignoredStatements = map[string]bool{
	"assign":        true,
	"parameter":     true,
	"localparam":    true,
	"defparam":      true,
	"genvar":        true,
	"typedef":       true,
	"import":        true,
	"export":        true,
	"specparam":     true,
	"initial":       true,
	"final":         true,
	"always":        true,
	"always_ff":     true,
	"always_comb":   true,
	"always_latch":  true,
	"if":            true,
	"else":          true,
	"for":           true,
	"while":         true,
	"repeat":        true,
	"forever":       true,
	"wait":          true,
	"disable":       true,
	"return":        true,
	"end":           true,
	"default":       true,
	"unique":        true,
	"priority":      true,
	"timeunit":      true,
	"timeprecision": true,
}

type fileParser struct {
	file string
	toks []token
	pos  int
}

// Parse converts the raw text of one source file into an ordered
// sequence of Module records. Constructs that do not match one of the
// recognized shapes (module header, internal declaration, instance,
// endmodule) are ignored; structural damage (unbalanced delimiters,
// missing endmodule) is a ParseError.
func Parse(file string, src []byte) ([]Module, error) {
	toks, err := lex(file, src)
	if err != nil {
		return nil, err
	}
	if err := checkBalance(file, toks); err != nil {
		return nil, err
	}

	p := &fileParser{file: file, toks: toks}
	var mods []Module
	for !p.eof() {
		t := p.next()
		if t.kind == tokIdent && (t.text == "module" || t.text == "macromodule") {
			m, err := p.parseModule(t.line)
			if err != nil {
				return nil, err
			}
			mods = append(mods, *m)
		}
	}
	return mods, nil
}

// checkBalance verifies that every ( [ { has a partner before
// end-of-input, independently of which construct it belongs to.
func checkBalance(file string, toks []token) error {
	var stack []token
	pairs := map[string]string{")": "(", "]": "[", "}": "{"}
	for _, t := range toks {
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			stack = append(stack, t)
		case ")", "]", "}":
			if len(stack) == 0 || stack[len(stack)-1].text != pairs[t.text] {
				return &ParseError{File: file, Line: t.line, Msg: fmt.Sprintf("unbalanced %q", t.text)}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return &ParseError{File: file, Line: open.line, Msg: fmt.Sprintf("unbalanced %q at end of input", open.text)}
	}
	return nil
}

func (p *fileParser) eof() bool { return p.pos >= len(p.toks) }

func (p *fileParser) peek() token { return p.toks[p.pos] }

func (p *fileParser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *fileParser) atPunct(s string) bool {
	return !p.eof() && p.peek().kind == tokPunct && p.peek().text == s
}

func (p *fileParser) errf(line int, format string, args ...interface{}) error {
	return &ParseError{File: p.file, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *fileParser) parseModule(line int) (*Module, error) {
	if p.eof() || p.peek().kind != tokIdent {
		return nil, p.errf(line, "module keyword without a module name")
	}
	name := p.next()
	m := &Module{Name: name.text, File: p.file, Line: line}

	if p.atPunct("#") {
		p.next()
		if !p.atPunct("(") {
			return nil, p.errf(name.line, "module %q: expected '(' after '#'", m.Name)
		}
		p.next()
		groups, err := p.commaGroups(")", name.line)
		if err != nil {
			return nil, err
		}
		params, err := p.parseParamGroups(m.Name, groups)
		if err != nil {
			return nil, err
		}
		m.Parameters = params
	}

	if p.atPunct("(") {
		p.next()
		groups, err := p.commaGroups(")", name.line)
		if err != nil {
			return nil, err
		}
		ports, err := p.parsePortGroups(m.Name, groups)
		if err != nil {
			return nil, err
		}
		m.Ports = ports
	}

	if !p.atPunct(";") {
		return nil, p.errf(name.line, "module %q: expected ';' after module header", m.Name)
	}
	p.next()

	if err := p.parseBody(m); err != nil {
		return nil, err
	}
	return m, nil
}

// commaGroups consumes tokens up to the matching closer (the opener is
// already consumed) and returns the top-level comma-separated spans.
func (p *fileParser) commaGroups(close string, line int) ([][]token, error) {
	var groups [][]token
	var cur []token
	depth := 0
	for {
		if p.eof() {
			return nil, p.errf(line, "unbalanced delimiters: missing %q before end of input", close)
		}
		t := p.next()
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					if len(cur) > 0 || len(groups) > 0 {
						groups = append(groups, cur)
					}
					return groups, nil
				}
				depth--
			case ",":
				if depth == 0 {
					groups = append(groups, cur)
					cur = nil
					continue
				}
			}
		}
		cur = append(cur, t)
	}
}

func (p *fileParser) parseParamGroups(modName string, groups [][]token) ([]Parameter, error) {
	var params []Parameter
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		i := 0
		for i < len(g) && g[i].kind == tokIdent && (g[i].text == "parameter" || g[i].text == "localparam") {
			i++
		}
		rest := g[i:]
		namePart := rest
		var defPart []token
		if eq := indexTopLevel(rest, "="); eq >= 0 {
			namePart = rest[:eq]
			defPart = rest[eq+1:]
		}
		nameIdx := -1
		for j := len(namePart) - 1; j >= 0; j-- {
			if namePart[j].kind == tokIdent {
				nameIdx = j
				break
			}
		}
		if nameIdx < 0 {
			return nil, p.errf(g[0].line, "module %q: malformed parameter declaration", modName)
		}
		params = append(params, Parameter{
			Name:    namePart[nameIdx].text,
			Type:    joinTokens(namePart[:nameIdx]),
			Default: joinTokens(defPart),
		})
	}
	return params, nil
}

func (p *fileParser) parsePortGroups(modName string, groups [][]token) ([]Port, error) {
	var ports []Port
	var carry Port
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		port, err := p.parsePortItem(modName, g, carry)
		if err != nil {
			return nil, err
		}
		ports = append(ports, port)
		carry = port
	}
	return ports, nil
}

// parsePortItem handles one comma-separated port list item. A bare
// identifier inherits direction/type/width from the previous item
// ("input logic a, b" declares b as input logic too).
func (p *fileParser) parsePortItem(modName string, g []token, carry Port) (Port, error) {
	i := 0
	dir := ""
	if g[i].kind == tokIdent && directions[g[i].text] {
		dir = g[i].text
		i++
	}
	rest := g[i:]
	if eq := indexTopLevel(rest, "="); eq >= 0 {
		rest = rest[:eq]
	}
	nameIdx := declNameIndex(rest)
	if nameIdx < 0 {
		return Port{}, p.errf(g[0].line, "module %q: malformed port declaration", modName)
	}
	port := Port{Name: rest[nameIdx].text, Direction: dir, Line: g[0].line}
	typeToks, widthToks := splitTypeWidth(rest[:nameIdx])
	port.Type = joinTokens(typeToks)
	port.Width = joinTokens(widthToks)

	if dir == "" {
		port.Direction = carry.Direction
		if nameIdx == 0 {
			// bare name: inherit the whole declaration prefix
			port.Type = carry.Type
			port.Width = carry.Width
		}
	}
	return port, nil
}

// declNameIndex finds the declared name in a prefix-form declaration:
// the last identifier that is followed only by bracketed dimensions.
func declNameIndex(toks []token) int {
	i := len(toks)
	for i > 0 {
		if toks[i-1].kind == tokPunct && toks[i-1].text == "]" {
			depth := 1
			j := i - 2
			for j >= 0 && depth > 0 {
				if toks[j].kind == tokPunct {
					switch toks[j].text {
					case "]":
						depth++
					case "[":
						depth--
					}
				}
				j--
			}
			if depth != 0 {
				return -1
			}
			i = j + 1
			continue
		}
		break
	}
	if i > 0 && toks[i-1].kind == tokIdent {
		return i - 1
	}
	return -1
}

// splitTypeWidth divides a declaration prefix into the type words and
// the packed-range brackets, both kept as opaque text.
func splitTypeWidth(toks []token) (typeToks, widthToks []token) {
	for i, t := range toks {
		if t.kind == tokPunct && t.text == "[" {
			return toks[:i], toks[i:]
		}
	}
	return toks, nil
}

func indexTopLevel(toks []token, punct string) int {
	depth := 0
	for i, t := range toks {
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case punct:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *fileParser) parseBody(m *Module) error {
	var stack []string
	for {
		if p.eof() {
			return p.errf(m.Line, "missing endmodule for module %q", m.Name)
		}

		if len(stack) > 0 {
			t := p.next()
			if t.kind != tokIdent {
				continue
			}
			if t.text == stack[len(stack)-1] {
				stack = stack[:len(stack)-1]
				continue
			}
			if closer, ok := blockClosers[t.text]; ok {
				stack = append(stack, closer)
				continue
			}
			if t.text == "endmodule" {
				// cut short by endmodule; tolerate the unclosed block
				return nil
			}
			continue
		}

		stmt, done, opened, err := p.collectStatement(m, &stack)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if opened {
			continue
		}
		p.classify(m, stmt)
	}
}

// collectStatement gathers tokens up to the next top-level ';'. It
// bails out early when the module ends or a procedural block opens.
func (p *fileParser) collectStatement(m *Module, stack *[]string) (stmt []token, done, opened bool, err error) {
	depth := 0
	for {
		if p.eof() {
			return nil, false, false, p.errf(m.Line, "missing endmodule for module %q", m.Name)
		}
		t := p.next()
		if t.kind == tokIdent && depth == 0 {
			if t.text == "endmodule" {
				return nil, true, false, nil
			}
			if closer, ok := blockClosers[t.text]; ok {
				*stack = append(*stack, closer)
				return nil, false, true, nil
			}
			// generate regions are transparent: instances declared
			// directly inside them are still part of the module shape
			if len(stmt) == 0 && (t.text == "generate" || t.text == "endgenerate") {
				continue
			}
		}
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ";":
				if depth == 0 {
					return stmt, false, false, nil
				}
			}
		}
		stmt = append(stmt, t)
	}
}

// classify matches one body statement against the recognized shapes.
// Statements matching none of them are silently ignored.
func (p *fileParser) classify(m *Module, stmt []token) {
	if len(stmt) == 0 || stmt[0].kind != tokIdent {
		return
	}
	lead := stmt[0].text
	if directions[lead] {
		p.mergeBodyPorts(m, lead, stmt[1:])
		return
	}
	if ignoredStatements[lead] {
		return
	}
	if inst, ok := matchInstance(stmt); ok {
		m.Instances = append(m.Instances, inst)
		return
	}
	if sigs, ok := matchDecl(stmt); ok {
		m.Signals = append(m.Signals, sigs...)
	}
}

// mergeBodyPorts handles non-ANSI port declarations inside the body
// ("input [7:0] a, b;"), completing ports listed bare in the header.
func (p *fileParser) mergeBodyPorts(m *Module, dir string, rest []token) {
	typ, width := "", ""
	for gi, g := range splitTopLevel(rest, ",") {
		if len(g) == 0 {
			return
		}
		if eq := indexTopLevel(g, "="); eq >= 0 {
			g = g[:eq]
		}
		idx := declNameIndex(g)
		if idx < 0 {
			return
		}
		if gi == 0 {
			typeToks, widthToks := splitTypeWidth(g[:idx])
			typ = joinTokens(typeToks)
			width = joinTokens(widthToks)
		} else if idx != 0 {
			return
		}
		upsertPort(m, Port{Name: g[idx].text, Direction: dir, Type: typ, Width: width, Line: g[idx].line})
	}
}

func upsertPort(m *Module, port Port) {
	for i := range m.Ports {
		if m.Ports[i].Name == port.Name {
			m.Ports[i].Direction = port.Direction
			if port.Type != "" {
				m.Ports[i].Type = port.Type
			}
			if port.Width != "" {
				m.Ports[i].Width = port.Width
			}
			return
		}
	}
	m.Ports = append(m.Ports, port)
}

// matchInstance recognizes: IDENT [#( overrides )] IDENT ( connections )
func matchInstance(stmt []token) (Instance, bool) {
	inst := Instance{ModuleType: stmt[0].text, Line: stmt[0].line}
	i := 1
	if i < len(stmt) && stmt[i].kind == tokPunct && stmt[i].text == "#" {
		i++
		inner, next, ok := parenSpan(stmt, i)
		if !ok {
			return Instance{}, false
		}
		inst.Overrides = parseOverrides(inner)
		i = next
	}
	if i >= len(stmt) || stmt[i].kind != tokIdent {
		return Instance{}, false
	}
	inst.Name = stmt[i].text
	i++
	_, next, ok := parenSpan(stmt, i)
	if !ok || next != len(stmt) {
		return Instance{}, false
	}
	return inst, true
}

// parenSpan returns the tokens inside a parenthesized span starting at
// stmt[i], and the index just past the closing paren.
func parenSpan(stmt []token, i int) (inner []token, next int, ok bool) {
	if i >= len(stmt) || stmt[i].kind != tokPunct || stmt[i].text != "(" {
		return nil, 0, false
	}
	depth := 1
	for j := i + 1; j < len(stmt); j++ {
		if stmt[j].kind == tokPunct {
			switch stmt[j].text {
			case "(":
				depth++
			case ")":
				depth--
				if depth == 0 {
					return stmt[i+1 : j], j + 1, true
				}
			}
		}
	}
	return nil, 0, false
}

func parseOverrides(inner []token) []Override {
	var out []Override
	for _, g := range splitTopLevel(inner, ",") {
		if len(g) == 0 {
			continue
		}
		if len(g) >= 3 && g[0].kind == tokPunct && g[0].text == "." && g[1].kind == tokIdent {
			if val, _, ok := parenSpan(g, 2); ok {
				out = append(out, Override{Name: g[1].text, Value: joinTokens(val)})
				continue
			}
		}
		out = append(out, Override{Value: joinTokens(g)})
	}
	return out
}

func splitTopLevel(toks []token, punct string) [][]token {
	var groups [][]token
	var cur []token
	depth := 0
	for _, t := range toks {
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case punct:
				if depth == 0 {
					groups = append(groups, cur)
					cur = nil
					continue
				}
			}
		}
		cur = append(cur, t)
	}
	groups = append(groups, cur)
	return groups
}

// matchDecl recognizes: TYPE... [range]* NAME [dims]* (, NAME [dims]*)* [= init]
func matchDecl(stmt []token) ([]Signal, bool) {
	i := 0
	n := len(stmt)
	var typeToks []token
	for i < n && stmt[i].kind == tokIdent {
		typeToks = append(typeToks, stmt[i])
		i++
	}
	if len(typeToks) == 0 {
		return nil, false
	}

	var widthToks []token
	for i < n && stmt[i].kind == tokPunct && stmt[i].text == "[" {
		grp, next, ok := bracketSpan(stmt, i)
		if !ok {
			return nil, false
		}
		widthToks = append(widthToks, grp...)
		i = next
	}

	var names []token
	if len(widthToks) == 0 {
		// the identifier run holds both type words and the first name
		if len(typeToks) < 2 {
			return nil, false
		}
		names = append(names, typeToks[len(typeToks)-1])
		typeToks = typeToks[:len(typeToks)-1]
	} else {
		if i >= n || stmt[i].kind != tokIdent {
			return nil, false
		}
		names = append(names, stmt[i])
		i++
		var ok bool
		if i, ok = skipDims(stmt, i); !ok {
			return nil, false
		}
	}

	for i < n {
		switch {
		case stmt[i].kind == tokPunct && stmt[i].text == ",":
			i++
			if i >= n || stmt[i].kind != tokIdent {
				return nil, false
			}
			names = append(names, stmt[i])
			i++
			var ok bool
			if i, ok = skipDims(stmt, i); !ok {
				return nil, false
			}
		case stmt[i].kind == tokPunct && stmt[i].text == "=":
			i = n // declaration initializer, opaque
		default:
			return nil, false
		}
	}

	typ := joinTokens(typeToks)
	width := joinTokens(widthToks)
	sigs := make([]Signal, 0, len(names))
	for _, nm := range names {
		sigs = append(sigs, Signal{Name: nm.text, Type: typ, Width: width, Line: nm.line})
	}
	return sigs, true
}

func bracketSpan(stmt []token, i int) (grp []token, next int, ok bool) {
	depth := 0
	for j := i; j < len(stmt); j++ {
		if stmt[j].kind == tokPunct {
			switch stmt[j].text {
			case "[":
				depth++
			case "]":
				depth--
				if depth == 0 {
					return stmt[i : j+1], j + 1, true
				}
			}
		}
	}
	return nil, 0, false
}

func skipDims(stmt []token, i int) (int, bool) {
	for i < len(stmt) && stmt[i].kind == tokPunct && stmt[i].text == "[" {
		_, next, ok := bracketSpan(stmt, i)
		if !ok {
			return i, false
		}
		i = next
	}
	return i, true
}
