package parser

// Module is the structural record for one textual module definition.
// It is immutable after parsing: later pipeline stages only read it.
type Module struct {
	Name       string      `json:"name"`
	File       string      `json:"file"`
	Line       int         `json:"line"`
	Parameters []Parameter `json:"parameters"`
	Ports      []Port      `json:"ports"`
	Signals    []Signal    `json:"signals"`
	Instances  []Instance  `json:"instances"`
}

// Parameter is a module parameter. Type and default are opaque source
// text; no evaluation is ever performed on them.
type Parameter struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default string `json:"default"`
}

// Port is a module port. Width is the bracketed range expression
// exactly as written (e.g. "[WIDTH-1:0]"), or "" for a scalar.
type Port struct {
	Name      string `json:"name"`
	Direction string `json:"direction"` // input, output, inout
	Type      string `json:"type"`
	Width     string `json:"width"`
	Line      int    `json:"line"`
}

// Signal is an internal declaration inside a module body.
type Signal struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Width string `json:"width"`
	Line  int    `json:"line"`
}

// Instance is an instantiation statement. ModuleType is resolved
// lazily, by name lookup in the registry, once all files are merged.
type Instance struct {
	Name       string     `json:"name"`
	ModuleType string     `json:"moduleType"`
	Overrides  []Override `json:"overrides,omitempty"`
	Line       int        `json:"line"`
}

// Override is one parameter override on an instance (.NAME(value)).
// Positional overrides keep an empty Name.
type Override struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
