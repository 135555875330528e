// Package render turns the interface model into formatted source text:
// the spy interface file and the bind statement. It is the only stage
// that produces text, and it never decides what to observe.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/robert-at-pretension-io/svspy/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Options carries the naming choices the renderer needs.
type Options struct {
	InterfaceName string
	TopInstance   string
}

type interfaceView struct {
	Interface  string
	Top        string
	ParamLines []string
	PortLines  []string
	Sections   []sectionView
}

type sectionView struct {
	Module string
	Spies  []spyView
}

type spyView struct {
	Var    string
	Decl   string
	Out    string
	Source string
}

type bindView struct {
	Top       string
	Interface string
	ParamMap  string
	Instance  string
}

// Interface renders the spy interface file.
func Interface(m *model.Model, opts Options) (string, error) {
	view := interfaceView{
		Interface:  opts.InterfaceName,
		Top:        m.Top,
		ParamLines: paramLines(m),
		PortLines:  portLines(m),
	}

	spyWidth := 0
	for _, e := range m.Spies() {
		if w := declHeadLen(e.Type, e.Width); w > spyWidth {
			spyWidth = w
		}
	}

	for _, s := range m.Sections {
		sec := sectionView{Module: s.Module}
		for _, e := range s.Entries {
			sec.Spies = append(sec.Spies, spyView{
				Var:    e.Name,
				Decl:   alignDecl("", e.Type, e.Width, e.Out, spyWidth),
				Out:    e.Out,
				Source: e.FullPath(),
			})
		}
		view.Sections = append(view.Sections, sec)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "interface.sv.tmpl", view); err != nil {
		return "", fmt.Errorf("rendering interface: %w", err)
	}
	return buf.String(), nil
}

// Bind renders the bind statement as a separate text artifact, with
// parameter pass-through when the top module declares parameters.
func Bind(m *model.Model, opts Options) (string, error) {
	var mappings []string
	for _, p := range m.Parameters {
		mappings = append(mappings, fmt.Sprintf(".%s(%s)", p.Name, p.Name))
	}

	instance := "i_" + opts.InterfaceName
	if opts.TopInstance != "" {
		instance = opts.TopInstance + "_spy"
	}

	view := bindView{
		Top:       m.Top,
		Interface: opts.InterfaceName,
		ParamMap:  strings.Join(mappings, ", "),
		Instance:  instance,
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "bind.sv.tmpl", view); err != nil {
		return "", fmt.Errorf("rendering bind statement: %w", err)
	}
	return buf.String(), nil
}

func paramLines(m *model.Model) []string {
	var lines []string
	for i, p := range m.Parameters {
		line := "parameter"
		if p.Type != "" {
			line += " " + p.Type
		}
		line += " " + p.Name
		if p.Default != "" {
			line += " = " + p.Default
		}
		if i < len(m.Parameters)-1 {
			line += ","
		}
		lines = append(lines, line)
	}
	return lines
}

func portLines(m *model.Model) []string {
	width := 0
	for _, p := range m.Ports {
		if w := declHeadLen(p.Type, p.Width); w > width {
			width = w
		}
	}
	var lines []string
	for i, p := range m.Ports {
		line := alignDecl("input", p.Type, p.Width, p.Name, width)
		if i < len(m.Ports)-1 {
			line += ","
		}
		lines = append(lines, line)
	}
	return lines
}

func declHeadLen(typ, width string) int {
	if typ == "" {
		typ = "logic"
	}
	n := len(typ)
	if width != "" {
		n += 1 + len(width)
	}
	return n
}

// alignDecl pads between the type+width column and the name so the
// names line up, the way the original hand-written interfaces read.
func alignDecl(prefix, typ, width, name string, col int) string {
	if typ == "" {
		typ = "logic"
	}
	head := typ
	if width != "" {
		head += " " + width
	}
	pad := col - len(head) + 1
	if pad < 1 {
		pad = 1
	}
	line := head + strings.Repeat(" ", pad) + name
	if prefix != "" {
		line = prefix + " " + line
	}
	return line
}
