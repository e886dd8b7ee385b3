package models

import "fmt"

// ViolationKind categorizes a validation failure.
type ViolationKind string

const (
	ViolationDuplicateName        ViolationKind = "duplicate_name"
	ViolationDuplicateModuleClass ViolationKind = "duplicate_module_class"
	ViolationMissingFrontman      ViolationKind = "missing_frontman"
	ViolationUnknownTool          ViolationKind = "unknown_tool"
	ViolationSelfReference        ViolationKind = "self_reference"
	ViolationUnknownFunction      ViolationKind = "unknown_function"
	ViolationInvalidParamType     ViolationKind = "invalid_param_type"
	ViolationUnknownRequired      ViolationKind = "unknown_required"
)

// Violation describes one broken invariant of the edited network.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Subject string        `json:"subject"`
	Message string        `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}
