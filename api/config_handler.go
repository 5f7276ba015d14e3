// Package api — configuration management endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/finmodel/ddmcalc/internal/config"
	"github.com/finmodel/ddmcalc/internal/validate"
)

// configMu serialises writes to the config file.
var configMu sync.Mutex

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file"` // path to the active config file
}

// handleGetConfig returns the current (running) configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg,
			ConfigFile: s.configFile,
		},
	})
}

// handleUpdateConfig merges the provided partial configuration into the
// running config, persists it to disk, and returns the updated config.
// New form defaults must pass the same validation as a live request.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	configMu.Lock()
	defer configMu.Unlock()

	// Decoding onto a copy of the running config gives field-level merge
	// semantics for free: only keys present in the body are overwritten,
	// at every nesting level.
	merged := *s.cfg
	if err := json.NewDecoder(r.Body).Decode(&merged); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if errs := validate.Check(merged.Defaults.Request()); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, APIResponse{
			Success: false,
			Error:   "updated defaults fail validation",
			Data:    ValidationErrorData{Errors: errs},
		})
		return
	}

	*s.cfg = merged

	// Persist to disk.
	if err := config.SaveToFile(s.cfg, s.configFile); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg,
			ConfigFile: s.configFile,
		},
	})
}
