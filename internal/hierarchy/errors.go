package hierarchy

import (
	"fmt"
	"strings"
)

// UnresolvedInstanceError reports an instance whose module-type name is
// not defined anywhere in the registry.
type UnresolvedInstanceError struct {
	MissingType string
	Module      string // module containing the instance
	Instance    string
	File        string
	Line        int
}

func (e *UnresolvedInstanceError) Error() string {
	return fmt.Sprintf("%s:%d: instance %s.%s references undefined module %q",
		e.File, e.Line, e.Module, e.Instance, e.MissingType)
}

// NoTopModuleError means every module is instantiated somewhere, so the
// design has no root.
type NoTopModuleError struct{}

func (e *NoTopModuleError) Error() string {
	return "no top module: every module is instantiated by another module"
}

// AmbiguousTopModuleError lists every never-instantiated module, sorted
// for reproducible error text.
type AmbiguousTopModuleError struct {
	Candidates []string
}

func (e *AmbiguousTopModuleError) Error() string {
	return fmt.Sprintf("ambiguous top module, candidates: %s", strings.Join(e.Candidates, ", "))
}

// UnknownTopModuleError reports an explicit top override naming a
// module that does not exist.
type UnknownTopModuleError struct {
	Name string
}

func (e *UnknownTopModuleError) Error() string {
	return fmt.Sprintf("configured top module %q is not defined in the sources", e.Name)
}

// CyclicHierarchyError reports a module-type repeating on the current
// instance path; the traversal would never terminate.
type CyclicHierarchyError struct {
	Module string
	Path   []string
}

func (e *CyclicHierarchyError) Error() string {
	return fmt.Sprintf("cyclic hierarchy: module %q revisited at path %s", e.Module, strings.Join(e.Path, "."))
}

// UnresolvableConflictError reports spy names that still collide after
// the full instance path has been prepended.
type UnresolvableConflictError struct {
	Name  string
	Paths []string // fully qualified colliding paths
}

func (e *UnresolvableConflictError) Error() string {
	return fmt.Sprintf("cannot disambiguate spy name %q: colliding paths %s", e.Name, strings.Join(e.Paths, ", "))
}
