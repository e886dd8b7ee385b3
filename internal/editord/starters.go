package editord

import (
	"fmt"
	"net/http"

	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/starters"
	"github.com/opencode-ai/netforge/internal/state"
)

type starterRequest struct {
	Name   string            `json:"name"`
	Values map[string]string `json:"values"`
}

func (s *Server) handleStarters(w http.ResponseWriter, r *http.Request) {
	list := s.starters
	if list == nil {
		list = []*starters.Starter{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleNetworkFromStarter replaces the network with an instantiated
// starter. Existing bindings are kept and the starter's values are added
// after them.
func (s *Server) handleNetworkFromStarter(w http.ResponseWriter, r *http.Request) {
	var req starterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, r, fmt.Errorf("%w: starter name is required", errBadRequest))
		return
	}
	starter := starters.Find(s.starters, req.Name)
	if starter == nil {
		s.writeError(w, r, fmt.Errorf("starter %q: %w", req.Name, state.ErrNotFound))
		return
	}

	var next *state.AppState
	err := s.write(func(st *state.AppState) error {
		var err error
		if next, err = starters.Instantiate(starter, st, req.Values); err != nil {
			return err
		}
		*st = *next.Clone()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	source := "starter " + starter.Name
	s.recordNetwork(r.Context(), models.EventTypeNetworkImported,
		models.DocumentPayload{Source: source, Count: len(next.Nodes)})
	s.logger.Info().Str("starter", starter.Name).Int("nodes", len(next.Nodes)).Msg("network created from starter")

	writeJSON(w, http.StatusCreated, newStateView(s.Snapshot()))
}
