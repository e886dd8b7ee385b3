package editord

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/opencode-ai/netforge/internal/documents"
	"github.com/opencode-ai/netforge/internal/graph"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/state"
	"github.com/opencode-ai/netforge/internal/subst"
)

// StateView is the body of GET /api/state.
type StateView struct {
	State      *state.AppState    `json:"state"`
	Violations []models.Violation `json:"violations"`
	Variables  *subst.Map         `json:"variables"`
}

func newStateView(st *state.AppState) StateView {
	violations := st.Validate()
	if violations == nil {
		violations = []models.Violation{}
	}
	return StateView{State: st, Violations: violations, Variables: st.EffectiveMap()}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": s.version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateView(s.Snapshot()))
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ModelCatalog)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.journal.List(limit))
}

type previewRequest struct {
	Text      string          `json:"text"`
	Direction subst.Direction `json:"direction,omitempty"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	dir := req.Direction
	switch dir {
	case "":
		dir = subst.DirectionExpand
	case subst.DirectionExpand, subst.DirectionCollapse:
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown direction %q", req.Direction))
		return
	}

	var m *subst.Map
	_ = s.read(func(st *state.AppState) error {
		m = st.EffectiveMap()
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]string{"result": subst.Apply(req.Text, m, dir)})
}

// --- Network ---

type networkRequest struct {
	ModelName    *string  `json:"model_name,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	Hierarchical *bool    `json:"hierarchical,omitempty"`
}

func (req networkRequest) apply(llm models.LLMConfig) (models.LLMConfig, error) {
	if req.ModelName != nil {
		llm.ModelName = models.ResolveModelName(*req.ModelName)
	}
	if req.Temperature != nil {
		if *req.Temperature < 0 || *req.Temperature > 1 {
			return llm, fmt.Errorf("%w: temperature must be between 0 and 1", errBadRequest)
		}
		llm.Temperature = *req.Temperature
	}
	return llm, nil
}

func (s *Server) handleNewNetwork(w http.ResponseWriter, r *http.Request) {
	var req networkRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	llm, err := req.apply(s.defaults)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	next := state.New(llm)
	if req.Hierarchical != nil {
		next.Hierarchical = *req.Hierarchical
	}
	s.swap(next)
	s.recordNetwork(r.Context(), models.EventTypeNetworkCreated, nil)
	s.logger.Info().Str("model", llm.ModelName).Msg("new network created")

	writeJSON(w, http.StatusCreated, newStateView(s.Snapshot()))
}

func (s *Server) handleUpdateNetwork(w http.ResponseWriter, r *http.Request) {
	var req networkRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.write(func(st *state.AppState) error {
		llm, err := req.apply(st.LLM)
		if err != nil {
			return err
		}
		st.LLM = llm
		if req.Hierarchical != nil {
			st.Hierarchical = *req.Hierarchical
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStateView(s.Snapshot()))
}

func (s *Server) handleImportNetwork(w http.ResponseWriter, r *http.Request) {
	text, err := readText(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	source := sourceParam(r, "network")

	// Import and write-back share one write lock.
	var next *state.AppState
	err = s.write(func(st *state.AppState) error {
		var err error
		if next, err = documents.ImportNetwork(st, source, text); err != nil {
			return err
		}
		*st = *next.Clone()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordNetwork(r.Context(), models.EventTypeNetworkImported,
		models.DocumentPayload{Source: source, Count: len(next.Nodes)})
	s.logger.Info().
		Str("source", source).
		Int("nodes", len(next.Nodes)).
		Int("functions", len(next.Functions)).
		Msg("network imported")

	writeJSON(w, http.StatusOK, newStateView(s.Snapshot()))
}

func (s *Server) handleExportNetwork(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tree, err := documents.ExportNetwork(s.Snapshot())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := writeDocument(w, tree, format); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write network document")
		return
	}
	s.recordNetwork(r.Context(), models.EventTypeNetworkExported,
		models.DocumentPayload{Format: string(format)})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	g := graph.Build(snap)

	hierarchical := snap.Hierarchical
	if raw := r.URL.Query().Get("hierarchical"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "hierarchical must be a boolean")
			return
		}
		hierarchical = v
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, g)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	if err := graph.WriteDOT(w, g, hierarchical); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write graph")
	}
}

// --- Variables ---

type bindingRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Server) handleAddBinding(w http.ResponseWriter, r *http.Request) {
	var req bindingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var b models.Binding
	_ = s.write(func(st *state.AppState) error {
		b = st.AddBinding(req.Name, req.Value)
		return nil
	})
	s.record(r.Context(), models.EventTypeBindingAdded, models.EntityTypeBinding, b.ID,
		models.BindingPayload{Name: b.Name})
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUpdateBinding(w http.ResponseWriter, r *http.Request) {
	var req bindingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	err := s.write(func(st *state.AppState) error {
		return st.UpdateBinding(id, req.Name, req.Value)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeBindingUpdated, models.EntityTypeBinding, id,
		models.BindingPayload{Name: req.Name})
	writeJSON(w, http.StatusOK, models.Binding{ID: id, Name: req.Name, Value: req.Value})
}

func (s *Server) handleRemoveBinding(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.write(func(st *state.AppState) error { return st.RemoveBinding(id) }); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeBindingRemoved, models.EntityTypeBinding, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportVariables(w http.ResponseWriter, r *http.Request) {
	text, err := readText(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	source := sourceParam(r, "variables")

	var added int
	err = s.write(func(st *state.AppState) error {
		var err error
		added, err = documents.ImportVariables(st, source, text)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordNetwork(r.Context(), models.EventTypeVariablesImported,
		models.DocumentPayload{Source: source, Count: added})
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (s *Server) handleExportVariables(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := writeDocument(w, documents.ExportVariables(s.Snapshot()), format); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write variables document")
	}
}

// --- Nodes ---

type nodeRequest struct {
	Name         *string           `json:"name,omitempty"`
	Class        *string           `json:"class,omitempty"`
	Instructions *string           `json:"instructions,omitempty"`
	Command      *string           `json:"command,omitempty"`
	Tools        []string          `json:"tools,omitempty"`
	Function     *string           `json:"function,omitempty"`
	LLM          *models.LLMConfig `json:"llm_config,omitempty"`
}

// applyNode updates one node field group at a time. The caller runs it on
// a clone so a failure part way through leaves the shared state unchanged.
func applyNode(st *state.AppState, id string, req nodeRequest) error {
	old, err := st.Node(id)
	if err != nil {
		return err
	}
	if req.Name != nil && *req.Name != old.Name {
		if err := st.RenameNode(id, *req.Name); err != nil {
			return err
		}
	}
	if req.LLM != nil {
		llm := *req.LLM
		llm.ModelName = models.ResolveModelName(llm.ModelName)
		req.LLM = &llm
	}
	if err := st.UpdateNode(id, state.NodePatch{
		Class:        req.Class,
		Instructions: req.Instructions,
		Command:      req.Command,
		LLM:          req.LLM,
	}); err != nil {
		return err
	}
	if req.Tools != nil {
		if err := st.SetTools(id, req.Tools); err != nil {
			return err
		}
	}
	if req.Function != nil {
		if err := st.AttachFunction(id, *req.Function); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var node models.Node
	err := s.write(func(st *state.AppState) error {
		next := st.Clone()
		id := next.AddNode().ID
		if err := applyNode(next, id, req); err != nil {
			return err
		}
		*st = *next
		node, _ = st.Node(id)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeNodeAdded, models.EntityTypeNode, node.ID, nil)
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")

	var before, after models.Node
	err := s.write(func(st *state.AppState) error {
		var err error
		if before, err = st.Node(id); err != nil {
			return err
		}
		next := st.Clone()
		if err := applyNode(next, id, req); err != nil {
			return err
		}
		*st = *next
		after, _ = st.Node(id)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if before.Name != after.Name {
		s.record(r.Context(), models.EventTypeNodeRenamed, models.EntityTypeNode, id,
			models.RenamedPayload{OldName: before.Name, NewName: after.Name})
	} else {
		s.record(r.Context(), models.EventTypeNodeUpdated, models.EntityTypeNode, id, nil)
	}
	writeJSON(w, http.StatusOK, after)
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.write(func(st *state.AppState) error { return st.RemoveNode(id) }); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeNodeRemoved, models.EntityTypeNode, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// --- Functions ---

type functionRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Module      *string  `json:"module,omitempty"`
	Class       *string  `json:"class,omitempty"`
	Required    []string `json:"required,omitempty"`
}

func applyFunction(st *state.AppState, id string, req functionRequest) error {
	fn, err := st.Function(id)
	if err != nil {
		return err
	}
	patch := state.FunctionPatch{Description: req.Description}
	if req.Name != nil && *req.Name != fn.Name {
		patch.Name = req.Name
	}
	if err := st.UpdateFunction(id, patch); err != nil {
		return err
	}
	if req.Module != nil || req.Class != nil {
		module, class := fn.Module, fn.Class
		if req.Module != nil {
			module = *req.Module
		}
		if req.Class != nil {
			class = *req.Class
		}
		if err := st.SetModuleClass(id, module, class); err != nil {
			return err
		}
	}
	if req.Required != nil {
		if err := st.SetRequired(id, req.Required); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleAddFunction(w http.ResponseWriter, r *http.Request) {
	var req functionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}

	var fn models.Function
	err := s.write(func(st *state.AppState) error {
		next := st.Clone()
		added, err := next.AddFunction(name)
		if err != nil {
			return err
		}
		req.Name = nil
		if err := applyFunction(next, added.ID, req); err != nil {
			return err
		}
		*st = *next
		fn, _ = st.Function(added.ID)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeFunctionAdded, models.EntityTypeFunction, fn.ID, nil)
	writeJSON(w, http.StatusCreated, fn)
}

func (s *Server) handleUpdateFunction(w http.ResponseWriter, r *http.Request) {
	var req functionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	var fn models.Function
	err := s.write(func(st *state.AppState) error {
		next := st.Clone()
		if err := applyFunction(next, id, req); err != nil {
			return err
		}
		*st = *next
		fn, _ = st.Function(id)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeFunctionUpdated, models.EntityTypeFunction, id, nil)
	writeJSON(w, http.StatusOK, fn)
}

func (s *Server) handleRemoveFunction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.write(func(st *state.AppState) error { return st.RemoveFunction(id) }); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeFunctionRemoved, models.EntityTypeFunction, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddParameter(w http.ResponseWriter, r *http.Request) {
	var patch state.ParameterPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")

	var param models.Parameter
	err := s.write(func(st *state.AppState) error {
		next := st.Clone()
		added, err := next.AddParameter(id)
		if err != nil {
			return err
		}
		if err := next.UpdateParameter(id, added.ID, patch); err != nil {
			return err
		}
		*st = *next
		fn, _ := st.Function(id)
		for _, p := range fn.Parameters {
			if p.ID == added.ID {
				param = p
			}
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeFunctionUpdated, models.EntityTypeFunction, id, nil)
	writeJSON(w, http.StatusCreated, param)
}

func (s *Server) handleUpdateParameter(w http.ResponseWriter, r *http.Request) {
	var patch state.ParameterPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, paramID := r.PathValue("id"), r.PathValue("param")

	var fn models.Function
	err := s.write(func(st *state.AppState) error {
		if err := st.UpdateParameter(id, paramID, patch); err != nil {
			return err
		}
		fn, _ = st.Function(id)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeFunctionUpdated, models.EntityTypeFunction, id, nil)
	writeJSON(w, http.StatusOK, fn)
}

func (s *Server) handleRemoveParameter(w http.ResponseWriter, r *http.Request) {
	id, paramID := r.PathValue("id"), r.PathValue("param")
	if err := s.write(func(st *state.AppState) error { return st.RemoveParameter(id, paramID) }); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r.Context(), models.EventTypeFunctionUpdated, models.EntityTypeFunction, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportFunctions(w http.ResponseWriter, r *http.Request) {
	text, err := readText(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	source := sourceParam(r, "functions")

	var added int
	err = s.write(func(st *state.AppState) error {
		var err error
		added, err = documents.ImportFunctions(st, source, text)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordNetwork(r.Context(), models.EventTypeFunctionsImported,
		models.DocumentPayload{Source: source, Count: added})
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (s *Server) handleExportFunctions(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := writeDocument(w, documents.ExportFunctions(s.Snapshot()), format); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write functions document")
	}
}
