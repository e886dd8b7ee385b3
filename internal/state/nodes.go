package state

import (
	"fmt"
	"slices"

	"github.com/opencode-ai/netforge/internal/models"
)

// NodePatch lists node fields to change; nil fields are left alone.
type NodePatch struct {
	Class        *string           `json:"class,omitempty"`
	Instructions *string           `json:"instructions,omitempty"`
	Command      *string           `json:"command,omitempty"`
	LLM          *models.LLMConfig `json:"llm_config,omitempty"`
}

func (s *AppState) newNode() models.Node {
	return models.Node{
		ID:    newID(),
		Tools: []string{},
		LLM:   s.LLM,
	}
}

// Frontman returns the first node, the default point of contact for users.
func (s *AppState) Frontman() *models.Node {
	if len(s.Nodes) == 0 {
		return nil
	}
	return &s.Nodes[0]
}

// AddNode appends an unnamed node carrying the network's default LLM config.
func (s *AppState) AddNode() models.Node {
	node := s.newNode()
	s.Nodes = append(s.Nodes, node)
	return node
}

// Node returns a copy of the node with id.
func (s *AppState) Node(id string) (models.Node, error) {
	i := s.nodeIndex(id)
	if i < 0 {
		return models.Node{}, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return s.Nodes[i], nil
}

// NodeByName returns the index of the node called name, or -1.
func (s *AppState) NodeByName(name string) int {
	if name == "" {
		return -1
	}
	return slices.IndexFunc(s.Nodes, func(n models.Node) bool { return n.Name == name })
}

// RenameNode sets a node's name. A non-empty name already used by another
// node is rejected with *NameCollisionError and nothing changes. Tool
// references to the old name follow the rename.
func (s *AppState) RenameNode(id, name string) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	old := s.Nodes[i].Name
	if name == old {
		return nil
	}
	if j := s.NodeByName(name); j >= 0 && j != i {
		return &NameCollisionError{Kind: "node name", Name: name}
	}

	s.Nodes[i].Name = name
	s.Nodes[i].Tools = slices.DeleteFunc(s.Nodes[i].Tools, func(tool string) bool {
		return tool == name
	})
	if old == "" {
		return nil
	}
	for k := range s.Nodes {
		tools := make([]string, 0, len(s.Nodes[k].Tools))
		for _, tool := range s.Nodes[k].Tools {
			if tool == old {
				if name == "" || k == i {
					continue
				}
				tool = name
			}
			tools = append(tools, tool)
		}
		s.Nodes[k].Tools = tools
	}
	return nil
}

// UpdateNode applies patch to a node.
func (s *AppState) UpdateNode(id string, patch NodePatch) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	if patch.Class != nil {
		s.Nodes[i].Class = *patch.Class
	}
	if patch.Instructions != nil {
		s.Nodes[i].Instructions = *patch.Instructions
	}
	if patch.Command != nil {
		s.Nodes[i].Command = *patch.Command
	}
	if patch.LLM != nil {
		s.Nodes[i].LLM = *patch.LLM
	}
	return nil
}

// SetTools replaces the nodes a node points to. Only names of other existing
// named nodes are kept, in the given order, without duplicates.
func (s *AppState) SetTools(id string, names []string) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	self := s.Nodes[i].Name
	tools := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || name == self || slices.Contains(tools, name) {
			continue
		}
		if s.NodeByName(name) < 0 {
			continue
		}
		tools = append(tools, name)
	}
	s.Nodes[i].Tools = tools
	return nil
}

// RemoveNode deletes a node and drops its name from every tools list. The
// frontman cannot be removed.
func (s *AppState) RemoveNode(id string) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	if i == 0 {
		return ErrFrontmanRequired
	}

	deleted := s.Nodes[i].Name
	s.Nodes = slices.Delete(s.Nodes, i, i+1)
	if deleted == "" {
		return nil
	}
	for k := range s.Nodes {
		s.Nodes[k].Tools = slices.DeleteFunc(s.Nodes[k].Tools, func(tool string) bool {
			return tool == deleted
		})
	}
	return nil
}

// AttachFunction points a node at a function by editor name. An empty name
// detaches the node's function.
func (s *AppState) AttachFunction(nodeID, functionName string) error {
	i := s.nodeIndex(nodeID)
	if i < 0 {
		return fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}
	if functionName != "" && s.functionByName(functionName) < 0 {
		return fmt.Errorf("function %q: %w", functionName, ErrNotFound)
	}
	s.Nodes[i].Function = functionName
	return nil
}

func (s *AppState) nodeIndex(id string) int {
	return slices.IndexFunc(s.Nodes, func(n models.Node) bool { return n.ID == id })
}
