package growth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"livestock-registry/internal/domain/identification"
	"livestock-registry/internal/middleware"
	"livestock-registry/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/identifications/{id}/growth", func(gr chi.Router) {
		gr.Get("/", analyzeHandler(svc))
	})
	r.Route("/identifications/{id}/measurements", func(mr chi.Router) {
		mr.Get("/", listHandler(svc))
		mr.Post("/", recordHandler(svc))
	})
}

type measurementResponse struct {
	AnimalID      string    `json:"animal_id"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
	WithersHeight Metric    `json:"withers_height"`
	BodyWidth     Metric    `json:"body_width"`
	BodyLength    Metric    `json:"body_length"`
}

// analyzeHandler godoc
// @Summary Estadísticas de crecimiento
// @Description Tasa de crecimiento por métrica (unidades/día) entre la primera y la última medición. 204 si el animal no tiene mediciones.
// @Tags growth
// @Produce json
// @Param id path string true "ID de la ficha"
// @Success 200 {object} Stats
// @Success 204
// @Failure 404 {object} respond.ErrorBody
// @Router /identifications/{id}/growth [get]
func analyzeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, ok, err := svc.Analyze(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respond.JSON(w, http.StatusOK, stats)
	}
}

// listHandler godoc
// @Summary Historial de mediciones
// @Description Mediciones del animal ordenadas por timestamp ascendente.
// @Tags growth
// @Produce json
// @Param id path string true "ID de la ficha"
// @Success 200 {array} measurementResponse
// @Failure 404 {object} respond.ErrorBody
// @Router /identifications/{id}/measurements [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms, err := svc.History(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]measurementResponse, 0, len(ms))
		for m := range Timeline(ms) {
			out = append(out, toMeasurementResponse(m))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// recordHandler godoc
// @Summary Ingestar medición
// @Description Entrada del feed de detección morfológica. El log es append-only.
// @Tags growth
// @Accept json
// @Produce json
// @Param id path string true "ID de la ficha"
// @Param payload body MeasurementInput true "Medición"
// @Success 201 {object} measurementResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {object} respond.ErrorBody
// @Router /identifications/{id}/measurements [post]
func recordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req MeasurementInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		m, err := svc.Record(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toMeasurementResponse(m))
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Validation(w, err)
	case errors.Is(err, identification.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "identification not found")
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toMeasurementResponse(m Measurement) measurementResponse {
	return measurementResponse{
		AnimalID:      m.AnimalID,
		Timestamp:     m.Timestamp,
		Source:        m.Source,
		WithersHeight: m.WithersHeight,
		BodyWidth:     m.BodyWidth,
		BodyLength:    m.BodyLength,
	}
}
