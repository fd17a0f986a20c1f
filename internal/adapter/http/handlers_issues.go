package adapthttp

import (
	"context"
	"net/http"
)

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := sessionFromContext(ctx).UserID

	switch r.Method {
	case http.MethodGet:
		limit := intQuery(r, "limit", 50)
		items, err := s.issues.ListRecent(ctx, userID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		var body struct {
			Title string `json:"title"`
			Notes string `json:"notes"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		issue, err := s.issues.Create(ctx, userID, body.Title, body.Notes)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"issue": issue})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleIssueClose(w http.ResponseWriter, r *http.Request) {
	s.setIssueStatus(w, r, s.issues.Close)
}

func (s *Server) handleIssueReopen(w http.ResponseWriter, r *http.Request) {
	s.setIssueStatus(w, r, s.issues.Reopen)
}

func (s *Server) setIssueStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, id int64) (bool, error)) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		ID int64 `json:"id"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	userID := sessionFromContext(r.Context()).UserID
	ok, err := op(r.Context(), userID, body.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleIssueSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID := sessionFromContext(r.Context()).UserID
	summary, err := s.issues.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
