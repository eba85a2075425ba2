package rebouclage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"livestock-registry/internal/domain/query"
	"livestock-registry/internal/middleware"
	"livestock-registry/internal/platform/respond"
	"livestock-registry/internal/ports/extraction"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/rebouclages", func(rr chi.Router) {
		rr.Post("/manual", createManualHandler(svc))
		rr.Post("/automatic", createAutomaticHandler(svc))
		rr.Get("/", searchHandler(svc))
		rr.Get("/export", exportHandler(svc))

		rr.Get("/{id}", getHandler(svc))
		rr.Patch("/{id}", updateHandler(svc))
		rr.Delete("/{id}", deleteHandler(svc))
	})
}

// recordResponse representa un re-crotalado devuelto por la API.
type recordResponse struct {
	ID              string    `json:"id"`
	OldNNI          string    `json:"old_nni"`
	NewNNI          string    `json:"new_nni"`
	ReplacementDate time.Time `json:"replacement_date"`
	AgentID         string    `json:"agent_id"`
	Mode            Mode      `json:"mode"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type searchResponse struct {
	Items      []recordResponse `json:"items"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

// automaticRequest: la imagen viaja en base64 dentro del JSON.
type automaticRequest struct {
	Image           []byte     `json:"image" swaggertype:"string" format:"base64"`
	ContentType     string     `json:"content_type"`
	NewNNI          string     `json:"new_nni"`
	AgentID         string     `json:"agent_id"`
	ReplacementDate *time.Time `json:"replacement_date"`
}

// createManualHandler godoc
// @Summary Registrar re-crotalado manual
// @Description El operador informa NNI anterior y nuevo. Deben ser distintos y la fecha no puede ser futura. Si agent_id no viene se usa el usuario autenticado.
// @Tags rebouclages
// @Accept json
// @Produce json
// @Param payload body ManualInput true "Re-crotalado"
// @Success 201 {object} recordResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {string} string "unauthorized"
// @Router /rebouclages/manual [post]
func createManualHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := authenticatedAgent(w, r)
		if !ok {
			return
		}

		var req ManualInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.AgentID) == "" {
			req.AgentID = agent
		}

		rec, err := svc.CreateManual(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

// createAutomaticHandler godoc
// @Summary Registrar re-crotalado automático
// @Description El NNI anterior se extrae de la foto del crotal retirado. Si la extracción falla no se registra nada (422).
// @Tags rebouclages
// @Accept json
// @Produce json
// @Param payload body automaticRequest true "Imagen base64 + NNI nuevo"
// @Success 201 {object} recordResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {string} string "unauthorized"
// @Failure 422 {object} respond.ErrorBody "extracción fallida"
// @Router /rebouclages/automatic [post]
func createAutomaticHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := authenticatedAgent(w, r)
		if !ok {
			return
		}

		var req automaticRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.AgentID) == "" {
			req.AgentID = agent
		}

		rec, err := svc.CreateAutomatic(r.Context(), AutomaticInput{
			Image:           extraction.Image{Data: req.Image, ContentType: req.ContentType},
			NewNNI:          req.NewNNI,
			AgentID:         req.AgentID,
			ReplacementDate: req.ReplacementDate,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

// searchHandler godoc
// @Summary Buscar re-crotalados
// @Tags rebouclages
// @Produce json
// @Param page query int false "Página (1-indexada)"
// @Param page_size query int false "Tamaño de página, por defecto 20, máximo 200. Un valor mayor se recorta a 200; page_size y total_pages de la respuesta reflejan el tamaño aplicado"
// @Param nni query string false "NNI anterior o nuevo"
// @Param nni_match query string false "exact | contains"
// @Param agent_id query string false "Agente"
// @Param mode query string false "manual | automatic"
// @Param from query string false "Reemplazado desde (RFC3339)"
// @Param to query string false "Reemplazado hasta (RFC3339)"
// @Success 200 {object} searchResponse
// @Failure 400 {object} respond.ErrorBody
// @Router /rebouclages [get]
func searchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := svc.Search(r.Context(), filter, parsePage(r))
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := searchResponse{
			Items:      make([]recordResponse, 0, len(res.Items)),
			Total:      res.Total,
			TotalPages: res.TotalPages,
			Page:       res.Page,
			PageSize:   res.PageSize,
		}
		for _, rec := range res.Items {
			out.Items = append(out.Items, toRecordResponse(rec))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// exportHandler godoc
// @Summary Exportar re-crotalados
// @Tags rebouclages
// @Produce text/csv
// @Param format query string false "csv | tsv (default csv)"
// @Success 200 {string} string "filas delimitadas"
// @Failure 400 {object} respond.ErrorBody
// @Router /rebouclages/export [get]
func exportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := query.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		filter, err := parseFilter(r)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		var buf bytes.Buffer
		if err := svc.Export(r.Context(), filter, format, &buf); err != nil {
			respond.Error(w, http.StatusInternalServerError, "export failed")
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rebouclages.%s"`, format.Extension()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// getHandler godoc
// @Summary Obtener re-crotalado
// @Tags rebouclages
// @Produce json
// @Param id path string true "ID"
// @Success 200 {object} recordResponse
// @Failure 404 {object} respond.ErrorBody
// @Router /rebouclages/{id} [get]
func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// updateHandler godoc
// @Summary Corregir re-crotalado
// @Description Se aplican los mismos chequeos que en el alta sobre el resultado mergeado.
// @Tags rebouclages
// @Accept json
// @Produce json
// @Param id path string true "ID"
// @Param payload body UpdateInput true "Campos a corregir"
// @Success 200 {object} recordResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {object} respond.ErrorBody
// @Router /rebouclages/{id} [patch]
func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authenticatedAgent(w, r); !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req UpdateInput
		if err := dec.Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		rec, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// deleteHandler godoc
// @Summary Borrar re-crotalado
// @Tags rebouclages
// @Param id path string true "ID"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {object} respond.ErrorBody
// @Router /rebouclages/{id} [delete]
func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authenticatedAgent(w, r); !ok {
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func authenticatedAgent(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return claims.UserID, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Validation(w, err)
	case errors.Is(err, ErrExtractionFailed):
		respond.Error(w, http.StatusUnprocessableEntity, ErrExtractionFailed.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, "rebouclage not found")
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func parsePage(r *http.Request) query.Page {
	var p query.Page
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		p.Number = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil {
		p.Size = v
	}
	return p
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()

	f := Filter{
		NNI:      q.Get("nni"),
		NNIMatch: query.ParseMatchMode(q.Get("nni_match")),
		AgentID:  q.Get("agent_id"),
		Mode:     Mode(q.Get("mode")),
	}

	var err error
	if f.From, err = parseTime(q.Get("from")); err != nil {
		return Filter{}, errors.New("from must be RFC3339")
	}
	if f.To, err = parseTime(q.Get("to")); err != nil {
		return Filter{}, errors.New("to must be RFC3339")
	}
	return f, nil
}

func parseTime(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toRecordResponse(r Record) recordResponse {
	return recordResponse{
		ID:              r.ID,
		OldNNI:          string(r.OldNNI),
		NewNNI:          string(r.NewNNI),
		ReplacementDate: r.ReplacementDate,
		AgentID:         r.AgentID,
		Mode:            r.Mode,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
