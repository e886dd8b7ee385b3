package state

import (
	"errors"
	"testing"

	"github.com/opencode-ai/netforge/internal/models"
	"github.com/stretchr/testify/require"
)

func newNamedState(t *testing.T, names ...string) *AppState {
	t.Helper()
	s := New(models.DefaultLLMConfig())
	require.NoError(t, s.RenameNode(s.Nodes[0].ID, names[0]))
	for _, name := range names[1:] {
		node := s.AddNode()
		require.NoError(t, s.RenameNode(node.ID, name))
	}
	return s
}

func TestNewHasFrontman(t *testing.T) {
	s := New(models.LLMConfig{ModelName: "gpt-4o", Temperature: 0.2})
	require.Len(t, s.Nodes, 1)
	require.Equal(t, "gpt-4o", s.Nodes[0].LLM.ModelName)
	require.Equal(t, 0.2, s.Nodes[0].LLM.Temperature)
	require.NotEmpty(t, s.Nodes[0].ID)
}

func TestEffectiveMapLastWins(t *testing.T) {
	s := New(models.DefaultLLMConfig())
	s.AddBinding("x", "1")
	s.AddBinding("y", "2")
	s.AddBinding("x", "9")

	require.Equal(t, map[string]string{"x": "9", "y": "2"}, s.EffectiveMap().ToMap())
}

func TestBindingUpdateRemove(t *testing.T) {
	s := New(models.DefaultLLMConfig())
	a := s.AddBinding("city", "Seattle")
	b := s.AddBinding("city", "Portland")

	require.NoError(t, s.RemoveBinding(b.ID))
	got, _ := s.EffectiveMap().Get("city")
	require.Equal(t, "Seattle", got)

	require.NoError(t, s.UpdateBinding(a.ID, "town", "Tacoma"))
	got, _ = s.EffectiveMap().Get("town")
	require.Equal(t, "Tacoma", got)

	err := s.RemoveBinding("missing")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestRenameNodeCollision(t *testing.T) {
	s := newNamedState(t, "frontman", "search")
	second := s.Nodes[1]

	err := s.RenameNode(second.ID, "frontman")
	var collision *NameCollisionError
	require.True(t, errors.As(err, &collision))
	require.Equal(t, "frontman", collision.Name)
	require.Equal(t, "search", s.Nodes[1].Name)
}

func TestRenameNodeUpdatesTools(t *testing.T) {
	s := newNamedState(t, "frontman", "search", "math")
	require.NoError(t, s.SetTools(s.Nodes[0].ID, []string{"search", "math"}))

	require.NoError(t, s.RenameNode(s.Nodes[1].ID, "lookup"))
	require.Equal(t, []string{"lookup", "math"}, s.Nodes[0].Tools)

	require.NoError(t, s.RenameNode(s.Nodes[2].ID, ""))
	require.Equal(t, []string{"lookup"}, s.Nodes[0].Tools)
}

func TestSetToolsFilters(t *testing.T) {
	s := newNamedState(t, "frontman", "search")
	s.AddNode() // unnamed

	require.NoError(t, s.SetTools(s.Nodes[0].ID, []string{"search", "frontman", "ghost", "", "search"}))
	require.Equal(t, []string{"search"}, s.Nodes[0].Tools)
}

func TestRemoveNodePrunesTools(t *testing.T) {
	s := newNamedState(t, "frontman", "search", "math")
	require.NoError(t, s.SetTools(s.Nodes[0].ID, []string{"search", "math"}))
	require.NoError(t, s.SetTools(s.Nodes[2].ID, []string{"search"}))

	require.NoError(t, s.RemoveNode(s.Nodes[1].ID))
	require.Len(t, s.Nodes, 2)
	require.Equal(t, []string{"math"}, s.Nodes[0].Tools)
	require.Empty(t, s.Nodes[1].Tools)
}

func TestRemoveFrontmanRejected(t *testing.T) {
	s := newNamedState(t, "frontman")
	err := s.RemoveNode(s.Nodes[0].ID)
	require.ErrorIs(t, err, ErrFrontmanRequired)
	require.Len(t, s.Nodes, 1)
}

func TestFunctions(t *testing.T) {
	s := newNamedState(t, "frontman")

	fn, err := s.AddFunction("lookup")
	require.NoError(t, err)
	_, err = s.AddFunction("lookup")
	var collision *NameCollisionError
	require.True(t, errors.As(err, &collision))

	require.NoError(t, s.AttachFunction(s.Nodes[0].ID, "lookup"))
	require.ErrorIs(t, s.AttachFunction(s.Nodes[0].ID, "nope"), ErrNotFound)

	name := "search"
	require.NoError(t, s.UpdateFunction(fn.ID, FunctionPatch{Name: &name}))
	require.Equal(t, "search", s.Nodes[0].Function)

	other, err := s.AddFunction("other")
	require.NoError(t, err)
	require.NoError(t, s.SetModuleClass(fn.ID, "tools", "Search"))
	err = s.SetModuleClass(other.ID, "tools", "Search")
	require.True(t, errors.As(err, &collision))
	require.Equal(t, "tools.Search", collision.Name)
	require.NoError(t, s.SetModuleClass(other.ID, "", ""))

	require.NoError(t, s.RemoveFunction(fn.ID))
	require.Empty(t, s.Nodes[0].Function)
}

func TestParameters(t *testing.T) {
	s := newNamedState(t, "frontman")
	fn, err := s.AddFunction("lookup")
	require.NoError(t, err)

	p1, err := s.AddParameter(fn.ID)
	require.NoError(t, err)
	p2, err := s.AddParameter(fn.ID)
	require.NoError(t, err)

	query, limit := "query", "limit"
	str := models.ParamTypeString
	require.NoError(t, s.UpdateParameter(fn.ID, p1.ID, ParameterPatch{Name: &query, Type: &str}))
	require.NoError(t, s.UpdateParameter(fn.ID, p2.ID, ParameterPatch{Name: &limit}))

	bad := models.ParamType("date")
	require.Error(t, s.UpdateParameter(fn.ID, p2.ID, ParameterPatch{Type: &bad}))

	require.NoError(t, s.SetRequired(fn.ID, []string{"query", "ghost", "limit", "query"}))
	got, _ := s.Function(fn.ID)
	require.Equal(t, []string{"query", "limit"}, got.Required)

	term := "term"
	require.NoError(t, s.UpdateParameter(fn.ID, p1.ID, ParameterPatch{Name: &term}))
	got, _ = s.Function(fn.ID)
	require.Equal(t, []string{"term", "limit"}, got.Required)

	require.NoError(t, s.RemoveParameter(fn.ID, p2.ID))
	got, _ = s.Function(fn.ID)
	require.Equal(t, []string{"term"}, got.Required)
	require.Len(t, got.Parameters, 1)
}

func TestCloneIsDeep(t *testing.T) {
	s := newNamedState(t, "frontman", "search")
	require.NoError(t, s.SetTools(s.Nodes[0].ID, []string{"search"}))
	s.AddBinding("k", "v")

	c := s.Clone()
	c.Nodes[0].Tools[0] = "changed"
	c.Bindings[0].Value = "changed"

	require.Equal(t, "search", s.Nodes[0].Tools[0])
	require.Equal(t, "v", s.Bindings[0].Value)
}

func TestValidate(t *testing.T) {
	s := New(models.DefaultLLMConfig())
	violations := s.Validate()
	require.Len(t, violations, 1)
	require.Equal(t, models.ViolationMissingFrontman, violations[0].Kind)

	s = newNamedState(t, "frontman", "search")
	require.Empty(t, s.Validate())

	// Bypass the mutators to break invariants directly.
	s.Nodes[1].Name = "frontman"
	s.Nodes[0].Tools = []string{"ghost"}
	s.Nodes[0].Function = "missing"
	s.Functions = append(s.Functions,
		models.Function{Name: "a", Module: "m", Class: "C", Required: []string{"q"}},
		models.Function{Name: "b", Module: "m", Class: "C", Parameters: []models.Parameter{{Name: "x", Type: "date"}}},
	)

	kinds := make(map[models.ViolationKind]bool)
	for _, v := range s.Validate() {
		kinds[v.Kind] = true
	}
	require.True(t, kinds[models.ViolationDuplicateName])
	require.True(t, kinds[models.ViolationUnknownTool])
	require.True(t, kinds[models.ViolationUnknownFunction])
	require.True(t, kinds[models.ViolationDuplicateModuleClass])
	require.True(t, kinds[models.ViolationUnknownRequired])
	require.True(t, kinds[models.ViolationInvalidParamType])
}
