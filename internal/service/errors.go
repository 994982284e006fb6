package service

import (
	"fmt"
	"strings"
)

// MappingNotFoundError reports a template that has no registered template
// VMID on the chosen node. AvailableNodes lists the nodes that do carry the
// template so callers can surface an actionable message.
type MappingNotFoundError struct {
	Template       string
	Node           string
	AvailableNodes []string
}

func (e *MappingNotFoundError) Error() string {
	if len(e.AvailableNodes) == 0 {
		return fmt.Sprintf("template %q is not registered on node %q and no node carries it", e.Template, e.Node)
	}
	return fmt.Sprintf("template %q is not registered on node %q, available on: %s",
		e.Template, e.Node, strings.Join(e.AvailableNodes, ", "))
}

// BackendError wraps a virtualization API failure with the operation that
// triggered it.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
