package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/services"
)

// pathID parses the {id} wildcard as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", common.ErrValidation, raw)
	}
	return id, nil
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.Directory.List(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var in services.NewMember
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	m, err := s.Directory.Create(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var patch models.MemberPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if _, err := s.Directory.Update(r.Context(), caller(r), id, patch); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Member and User updated successfully"})
}

func (s *Server) handleAppointMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var in struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	m, err := s.Directory.Appoint(r.Context(), caller(r), id, in.Role)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: fmt.Sprintf("%s appointed as %s", m.Name, m.Role)})
}
