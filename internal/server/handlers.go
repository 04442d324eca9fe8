package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/board"
	"github.com/matzehuels/heightchart/pkg/board/sink"
	"github.com/matzehuels/heightchart/pkg/buildinfo"
	"github.com/matzehuels/heightchart/pkg/colorize"
	"github.com/matzehuels/heightchart/pkg/errors"
)

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

// stateResponse answers every mutation.
type stateResponse struct {
	Changed bool    `json:"changed"`
	Count   int     `json:"count"`
	Zoom    float64 `json:"zoom"`
	CanUndo bool    `json:"can_undo"`
	CanRedo bool    `json:"can_redo"`
}

type addResponse struct {
	ID     string        `json:"id"`
	Avatar avatar.Avatar `json:"avatar"`
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// zoomRequest sets Zoom when it is positive, otherwise steps by Step
// ("in" or "out").
type zoomRequest struct {
	Zoom float64 `json:"zoom"`
	Step string  `json:"step"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func (s *Server) state(changed bool) stateResponse {
	st := s.store.State()
	return stateResponse{
		Changed: changed,
		Count:   len(st.Avatars),
		Zoom:    st.Zoom,
		CanUndo: st.CanUndo,
		CanRedo: st.CanRedo,
	}
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(body) > maxBodyBytes {
		return errors.New(errors.ErrCodeInvalidInput, "body exceeds %d bytes", maxBodyBytes)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode body")
	}
	return nil
}

// =============================================================================
// Reads
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Get().Version})
}

// layout lays the store out for the viewport in the query: width and height
// in pixels, narrow as true, false or auto. Missing values fall back to the
// session board's configuration.
func (s *Server) layout(r *http.Request) (board.Layout, error) {
	cfg := s.board.Config()
	q := r.URL.Query()
	for key, dst := range map[string]*float64{"width": &cfg.Width, "height": &cfg.Height} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return board.Layout{}, errors.New(errors.ErrCodeInvalidInput, "%s must be a positive number, got %q", key, v)
		}
		*dst = f
	}

	opts := []board.Option{board.WithLogger(s.logger)}
	switch v := q.Get("narrow"); v {
	case "", "auto":
	case "true", "1":
		opts = append(opts, board.WithNarrow(true))
	case "false", "0":
		opts = append(opts, board.WithNarrow(false))
	default:
		return board.Layout{}, errors.New(errors.ErrCodeInvalidInput, "narrow must be true, false or auto, got %q", v)
	}
	return board.Converge(s.store, cfg, convergeFrames, opts...), nil
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	l, err := s.layout(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := sink.RenderJSON(l, sink.WithJSONCompact())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleBoardSVG(w http.ResponseWriter, r *http.Request) {
	avs := s.store.Avatars()
	assets := colorize.Assets{}
	if s.colors != nil {
		var failed map[string]error
		assets, failed = s.colors.Resolve(r.Context(), avs, colorize.DefaultResolveLimit)
		for id, err := range failed {
			s.logger.Warn("asset unavailable, drawing placeholder", "avatar", id, "err", err)
		}
	}

	l, err := s.layout(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := sink.RenderSVG(l,
		sink.WithAssets(func(v board.Visual) (string, bool) { return assets.SVG(v.Avatar.ID) }),
		sink.WithBackground(r.URL.Query().Get("background")),
	)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(data)
}

// handleProxySVG fetches a remote person asset and returns it recolored.
func (s *Server) handleProxySVG(w http.ResponseWriter, r *http.Request) {
	if s.colors == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "asset proxy disabled"))
		return
	}
	locator, fill := r.URL.Query().Get("url"), r.URL.Query().Get("fill")
	if locator == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "url is required"))
		return
	}
	m, err := s.colors.Get(r.Context(), locator, fill)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	io.WriteString(w, m.SVG)
}

// =============================================================================
// Writes
// =============================================================================

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var a avatar.Avatar
	if err := decodeBody(r, &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	if a.Kind == "" {
		a.Kind = avatar.KindPerson
	}
	if err := a.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, ok := s.store.Add(a)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidAvatar, "avatar rejected"))
		return
	}
	added, _ := s.store.Get(id)
	writeJSON(w, http.StatusCreated, addResponse{ID: id, Avatar: added})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch avatar.Patch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.board.Edit(id, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, _ := s.store.Get(id)
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.board.Remove(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "avatar %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.board.Reorder(req.IDs); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state(true))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	changed := s.store.Len() > 0
	s.store.Clear()
	writeJSON(w, http.StatusOK, s.state(changed))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state(s.store.Undo()))
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state(s.store.Redo()))
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	before := s.store.Zoom()
	switch {
	case req.Zoom > 0:
		s.store.SetZoom(req.Zoom)
	case req.Step == "in":
		s.store.ZoomIn()
	case req.Step == "out":
		s.store.ZoomOut()
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, `zoom must be positive or step "in"/"out"`))
		return
	}
	writeJSON(w, http.StatusOK, s.state(s.store.Zoom() != before))
}
