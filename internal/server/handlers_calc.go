package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/repforge/repforge/internal/units"
)

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Catalog().List())
}

func (s *Server) handleListMaxWeights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.MaxWeights())
}

func (s *Server) handleGetMaxWeight(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.ws.MaxWeight(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "no max weight recorded")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSetMaxWeight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight string `json:"weight"`
		Unit   string `json:"unit"`
	}
	if !decode(w, r, &req) {
		return
	}
	unit, err := units.Parse(req.Unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := s.ws.SetMaxWeight(r.Context(), chi.URLParam(r, "name"), req.Weight, unit)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRemoveMaxWeight(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.RemoveMaxWeight(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConvert converts ?value= between ?from= and ?to=. Units of different
// families convert to 0.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "value must be a number")
		return
	}
	from, err := units.Parse(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := units.Parse(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"value": units.ConvertWeight(value, from, to),
		"unit":  to,
	})
}

// handleWeightToPercentage answers ?weight= and ?exercise= with the share of
// the exercise's max. The percentage is empty when no max is recorded.
func (s *Server) handleWeightToPercentage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, map[string]string{
		"percentage": s.ws.WeightToPercentage(q.Get("weight"), q.Get("exercise")),
	})
}

func (s *Server) handlePercentageToWeight(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unit, err := units.Parse(q.Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"weight": s.ws.PercentageToWeight(q.Get("percentage"), q.Get("exercise"), unit),
	})
}
