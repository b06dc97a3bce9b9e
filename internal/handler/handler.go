// Package handler exposes the topology session to the browser editor.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"coregraph/internal/client"
	"coregraph/internal/nodetype"
	"coregraph/internal/session"
	"coregraph/internal/surface"
)

// EditorHandler translates editor HTTP requests into session operations.
type EditorHandler struct {
	session *session.Session
	dataset *surface.Dataset
	events  http.Handler
}

// New creates an editor handler. events serves the SSE mutation stream.
func New(s *session.Session, d *surface.Dataset, events http.Handler) *EditorHandler {
	return &EditorHandler{session: s, dataset: d, events: events}
}

// ErrorResponse names the failed action and its underlying cause, the shape
// the editor renders as a notification.
type ErrorResponse struct {
	Action string `json:"action"`
	Cause  string `json:"cause"`
}

// Routes builds the editor API mux.
func (h *EditorHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/graph", h.GetGraph)
	mux.HandleFunc("POST /api/session/join", h.JoinSession)
	mux.HandleFunc("POST /api/session/start", h.StartSession)
	mux.HandleFunc("GET /api/session/nodes", h.GetCoreNodes)
	mux.HandleFunc("PUT /api/nodes/{id}/services", h.SetNodeServices)

	mux.HandleFunc("PUT /api/placement", h.SetPlacement)
	mux.HandleFunc("PUT /api/node-creation", h.SetNodeCreation)
	mux.HandleFunc("PUT /api/link-mode", h.SetLinkMode)

	mux.HandleFunc("POST /api/events/double-click", h.DoubleClick)
	mux.HandleFunc("POST /api/events/edge", h.EdgeAdded)
	if h.events != nil {
		mux.Handle("GET /api/events", h.events)
	}

	return mux
}

// GetGraph returns the current surface dataset.
func (h *EditorHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{
		"nodes": h.dataset.Nodes(),
		"edges": h.dataset.Edges(),
	}, http.StatusOK)
}

// JoinSession reinitializes the local model from a daemon node list.
func (h *EditorHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nodes []client.NodePayload `json:"nodes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "join session", "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.session.JoinSession(r.Context(), req.Nodes); err != nil {
		log.Printf("join session: %v", err)
		h.writeError(w, "join session", err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]int{"nodes": h.session.NodeCount(), "links": h.session.LinkCount()}, http.StatusOK)
}

// StartSession pushes the local topology and starts the remote session.
func (h *EditorHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Start(r.Context()); err != nil {
		log.Printf("start session: %v", err)
		h.writeError(w, "start session", err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCoreNodes returns every local node serialized to its public fields.
func (h *EditorHandler) GetCoreNodes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.session.CoreNodes(), http.StatusOK)
}

// SetNodeServices replaces the service set assigned to one node.
func (h *EditorHandler) SetNodeServices(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, "set services", "invalid node id", http.StatusBadRequest)
		return
	}

	var req struct {
		Services []string `json:"services"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "set services", "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.session.SetNodeServices(id, req.Services); err != nil {
		h.writeError(w, "set services", err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPlacement selects the node type/model for the next placed node.
func (h *EditorHandler) SetPlacement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  int    `json:"type"`
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "set placement", "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.session.SetNodePlacement(nodetype.Type(req.Type), nodetype.Model(req.Model)); err != nil {
		h.writeError(w, "set placement", err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetNodeCreation toggles interactive node placement.
func (h *EditorHandler) SetNodeCreation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "set node creation", "invalid request body", http.StatusBadRequest)
		return
	}
	h.session.EnableNodeCreation(req.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

// SetLinkMode arms or disarms edge drawing.
func (h *EditorHandler) SetLinkMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "set link mode", "invalid request body", http.StatusBadRequest)
		return
	}
	h.session.SetLinkMode(req.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

// DoubleClick handles a canvas double-click reported by the editor.
func (h *EditorHandler) DoubleClick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		HitNodes int     `json:"hit_nodes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "add node", "invalid request body", http.StatusBadRequest)
		return
	}

	n, err := h.session.HandleDoubleClick(req.X, req.Y, req.HitNodes)
	if err != nil {
		log.Printf("add node: %v", err)
		h.writeError(w, "add node", err.Error(), http.StatusInternalServerError)
		return
	}
	if n == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, map[string]any{"id": n.ID, "name": n.Name}, http.StatusCreated)
}

// EdgeAdded handles an edge drawn on the editor surface.
func (h *EditorHandler) EdgeAdded(w http.ResponseWriter, r *http.Request) {
	var e surface.Edge
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		h.writeError(w, "add edge", "invalid request body", http.StatusBadRequest)
		return
	}

	// The browser's dataset already holds the drawn edge when its event
	// fires; mirror it here before delegating so finalization and removal
	// reach the snapshot and the mutation stream.
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	h.dataset.AddEdge(e)

	if err := h.session.HandleEdgeAdded(r.Context(), e); err != nil {
		log.Printf("add edge: %v", err)
		h.writeError(w, "add edge", err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EditorHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func (h *EditorHandler) writeError(w http.ResponseWriter, action, cause string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Action: action, Cause: cause}); err != nil {
		log.Printf("encode error response: %v", err)
	}
}
