package hierarchy

import "fmt"

// Mode selects which signals populate the generated interface.
type Mode uint8

const (
	ModePorts Mode = iota + 1
	ModeRegisters
	ModeBoth
)

// ParseMode checks a configuration string at the boundary; mode is
// never threaded through the pipeline as free-form text.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "ports":
		return ModePorts, nil
	case "registers", "regs":
		return ModeRegisters, nil
	case "both", "":
		return ModeBoth, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want ports, registers or both)", s)
}

func (m Mode) String() string {
	switch m {
	case ModePorts:
		return "ports"
	case ModeRegisters:
		return "registers"
	case ModeBoth:
		return "both"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

func (m Mode) includesPorts() bool     { return m == ModePorts || m == ModeBoth }
func (m Mode) includesRegisters() bool { return m == ModeRegisters || m == ModeBoth }
