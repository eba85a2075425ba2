package identification

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
	"livestock-registry/internal/ports/directory"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta las rutas de identificación. dir puede ser nil: en ese
// caso no se chequea la existencia de las refs administrativas.
func RegisterRoutes(r chi.Router, svc *Service, dir directory.Directory) {
	r.Route("/identifications", func(ir chi.Router) {
		ir.Post("/", createHandler(svc, dir))
		ir.Get("/", searchHandler(svc))
		ir.Get("/export", exportHandler(svc))
		ir.Get("/by-nni/{nni}", getByNNIHandler(svc))

		ir.Get("/{id}", getHandler(svc))
		ir.Patch("/{id}", updateHandler(svc, dir))
		ir.Delete("/{id}", deleteHandler(svc))
	})
}

type slotResponse struct {
	NNI         string `json:"nni"`
	DateOfBirth string `json:"date_of_birth"`
	Breed       Breed  `json:"breed"`
}

type subjectResponse struct {
	NNI         string   `json:"nni"`
	DateOfBirth string   `json:"date_of_birth"`
	Breed       Breed    `json:"breed"`
	Sex         Sex      `json:"sex"`
	Species     Species  `json:"species_type"`
	Photos      []string `json:"photos"`
}

type lineageResponse struct {
	Mother              slotResponse `json:"mother"`
	MaternalGrandfather slotResponse `json:"maternal_grandfather"`
	Father              slotResponse `json:"father"`
	PaternalGrandfather slotResponse `json:"paternal_grandfather"`
	PaternalGrandmother slotResponse `json:"paternal_grandmother"`
}

type adminResponse struct {
	BreederID    string `json:"breeder_id"`
	HoldingID    string `json:"holding_id"`
	LocalAgentID string `json:"local_agent_id"`
}

// recordResponse representa una ficha de identificación devuelta por la API.
type recordResponse struct {
	ID        string          `json:"id"`
	Subject   subjectResponse `json:"subject"`
	Lineage   lineageResponse `json:"lineage"`
	Admin     adminResponse   `json:"administrative_refs"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type searchResponse struct {
	Items      []recordResponse `json:"items"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

// createHandler godoc
// @Summary Registrar identificación
// @Description Crea la ficha de un animal con sujeto, cinco ancestros y refs administrativas. Todos los campos son obligatorios; los errores se devuelven por campo. Con directorio configurado, las refs administrativas se verifican después de la validación local. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags identifications
// @Accept json
// @Produce json
// @Param payload body CreateInput true "Ficha completa; fechas YYYY-MM-DD"
// @Success 201 {object} recordResponse
// @Failure 400 {object} respond.ErrorBody "validación por campo"
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {object} respond.ErrorBody "nni ya registrado"
// @Router /identifications [post]
func createHandler(svc *Service, dir directory.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req CreateInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		// Primero la validación local completa; el directorio solo se
		// consulta con un input que ya pasó.
		if err := svc.ValidateCreate(claims.UserID, req); err != nil {
			writeServiceError(w, err)
			return
		}
		if !checkDirectory(w, r, dir, adminPatchFrom(req.Admin)) {
			return
		}

		rec, err := svc.Create(r.Context(), claims.UserID, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

// searchHandler godoc
// @Summary Buscar identificaciones
// @Description Filtros combinados con AND; rangos de fecha inclusivos. Una página más allá de la última devuelve items vacío.
// @Tags identifications
// @Produce json
// @Param page query int false "Página (1-indexada)"
// @Param page_size query int false "Tamaño de página, por defecto 20, máximo 200. Un valor mayor se recorta a 200; page_size y total_pages de la respuesta reflejan el tamaño aplicado"
// @Param nni query string false "NNI del sujeto"
// @Param nni_match query string false "exact | contains"
// @Param breed query string false "Raza"
// @Param sex query string false "male | female"
// @Param species_type query string false "bovine | ovine | caprine"
// @Param breeder_id query string false "Criador"
// @Param holding_id query string false "Explotación"
// @Param local_agent_id query string false "Agente local"
// @Param born_from query string false "Nacido desde (YYYY-MM-DD)"
// @Param born_to query string false "Nacido hasta (YYYY-MM-DD)"
// @Param created_from query string false "Creado desde (RFC3339)"
// @Param created_to query string false "Creado hasta (RFC3339)"
// @Success 200 {object} searchResponse
// @Failure 400 {object} respond.ErrorBody
// @Router /identifications [get]
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
// @Summary Exportar identificaciones
// @Description Exporta el conjunto filtrado completo (sin paginar) en CSV o TSV. Mismos filtros que la búsqueda.
// @Tags identifications
// @Produce text/csv
// @Param format query string false "csv | tsv (default csv)"
// @Success 200 {string} string "filas delimitadas"
// @Failure 400 {object} respond.ErrorBody
// @Router /identifications/export [get]
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

		// Se arma en memoria para no dejar una respuesta a medias si falla el store.
		var buf bytes.Buffer
		if err := svc.Export(r.Context(), filter, format, &buf); err != nil {
			respond.Error(w, http.StatusInternalServerError, "export failed")
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="identifications.%s"`, format.Extension()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// getHandler godoc
// @Summary Obtener identificación
// @Tags identifications
// @Produce json
// @Param id path string true "ID de la ficha"
// @Success 200 {object} recordResponse
// @Failure 404 {object} respond.ErrorBody
// @Router /identifications/{id} [get]
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

// getByNNIHandler godoc
// @Summary Obtener identificación por NNI
// @Tags identifications
// @Produce json
// @Param nni path string true "NNI (se normaliza)"
// @Success 200 {object} recordResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody
// @Router /identifications/by-nni/{nni} [get]
func getByNNIHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.GetByNNI(r.Context(), chi.URLParam(r, "nni"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// updateHandler godoc
// @Summary Actualizar identificación (parcial)
// @Description Solo los grupos enviados y con valor distinto se validan y reemplazan. Sin cambios es un no-op (updated_at no cambia y no se consulta el directorio). Solo las refs administrativas que cambian se verifican en el directorio.
// @Tags identifications
// @Accept json
// @Produce json
// @Param id path string true "ID de la ficha"
// @Param payload body UpdateInput true "Patch por grupo"
// @Success 200 {object} recordResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {object} respond.ErrorBody
// @Failure 409 {object} respond.ErrorBody
// @Router /identifications/{id} [patch]
func updateHandler(svc *Service, dir directory.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req UpdateInput
		if err := dec.Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		id := chi.URLParam(r, "id")
		current, cs, err := svc.PrepareUpdate(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if cs.Empty() {
			respond.JSON(w, http.StatusOK, toRecordResponse(current))
			return
		}
		if cs.Admin != nil && !checkDirectory(w, r, dir, changedRefs(current.Admin, *cs.Admin)) {
			return
		}

		rec, err := svc.Update(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// deleteHandler godoc
// @Summary Borrar identificación
// @Description Borra la ficha y libera su NNI.
// @Tags identifications
// @Param id path string true "ID de la ficha"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {object} respond.ErrorBody
// @Router /identifications/{id} [delete]
func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Validation(w, err)
	case errors.Is(err, ErrDuplicateNNI):
		respond.Error(w, http.StatusConflict, "this animal is already registered")
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, "identification not found")
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// checkDirectory verifica en el directorio externo las refs presentes en p.
// Escribe la respuesta y devuelve false si algo falla.
func checkDirectory(w http.ResponseWriter, r *http.Request, dir directory.Directory, p AdminPatch) bool {
	if dir == nil {
		return true
	}

	checks := []struct {
		field string
		kind  directory.Kind
		id    *string
	}{
		{"administrative_refs.breeder_id", directory.KindBreeder, p.BreederID},
		{"administrative_refs.holding_id", directory.KindHolding, p.HoldingID},
		{"administrative_refs.local_agent_id", directory.KindLocalAgent, p.LocalAgentID},
	}

	missing := map[string]string{}
	for _, c := range checks {
		if c.id == nil || strings.TrimSpace(*c.id) == "" {
			continue
		}
		found, err := dir.Exists(r.Context(), c.kind, strings.TrimSpace(*c.id))
		if err != nil {
			respond.Error(w, http.StatusBadGateway, "directory unavailable")
			return false
		}
		if !found {
			missing[c.field] = "not found in directory"
		}
	}

	if len(missing) > 0 {
		respond.Fields(w, http.StatusBadRequest, "validation failed", missing)
		return false
	}
	return true
}

func adminPatchFrom(in AdminInput) AdminPatch {
	return AdminPatch{
		BreederID:    &in.BreederID,
		HoldingID:    &in.HoldingID,
		LocalAgentID: &in.LocalAgentID,
	}
}

// changedRefs deja en el patch solo las refs que difieren de las guardadas.
func changedRefs(current AdministrativeRefs, next AdminInput) AdminPatch {
	var p AdminPatch
	if next.BreederID != current.BreederID {
		p.BreederID = &next.BreederID
	}
	if next.HoldingID != current.HoldingID {
		p.HoldingID = &next.HoldingID
	}
	if next.LocalAgentID != current.LocalAgentID {
		p.LocalAgentID = &next.LocalAgentID
	}
	return p
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
		NNI:          q.Get("nni"),
		NNIMatch:     query.ParseMatchMode(q.Get("nni_match")),
		Breed:        Breed(q.Get("breed")),
		Sex:          Sex(q.Get("sex")),
		Species:      Species(q.Get("species_type")),
		BreederID:    q.Get("breeder_id"),
		HoldingID:    q.Get("holding_id"),
		LocalAgentID: q.Get("local_agent_id"),
	}

	var err error
	if f.BornFrom, err = parseTimeParam(q.Get("born_from"), DateLayout); err != nil {
		return Filter{}, errors.New("born_from must be YYYY-MM-DD")
	}
	if f.BornTo, err = parseTimeParam(q.Get("born_to"), DateLayout); err != nil {
		return Filter{}, errors.New("born_to must be YYYY-MM-DD")
	}
	if f.CreatedFrom, err = parseTimeParam(q.Get("created_from"), time.RFC3339); err != nil {
		return Filter{}, errors.New("created_from must be RFC3339")
	}
	if f.CreatedTo, err = parseTimeParam(q.Get("created_to"), time.RFC3339); err != nil {
		return Filter{}, errors.New("created_to must be RFC3339")
	}
	return f, nil
}

func parseTimeParam(v, layout string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toSlotResponse(s LineageSlot) slotResponse {
	return slotResponse{
		NNI:         string(s.NNI),
		DateOfBirth: formatDay(s.DateOfBirth),
		Breed:       s.Breed,
	}
}

func toRecordResponse(r Record) recordResponse {
	photos := r.Subject.Photos
	if photos == nil {
		photos = []string{}
	}
	return recordResponse{
		ID: r.ID,
		Subject: subjectResponse{
			NNI:         string(r.Subject.NNI),
			DateOfBirth: formatDay(r.Subject.DateOfBirth),
			Breed:       r.Subject.Breed,
			Sex:         r.Subject.Sex,
			Species:     r.Subject.Species,
			Photos:      photos,
		},
		Lineage: lineageResponse{
			Mother:              toSlotResponse(r.Lineage.Mother),
			MaternalGrandfather: toSlotResponse(r.Lineage.MaternalGrandfather),
			Father:              toSlotResponse(r.Lineage.Father),
			PaternalGrandfather: toSlotResponse(r.Lineage.PaternalGrandfather),
			PaternalGrandmother: toSlotResponse(r.Lineage.PaternalGrandmother),
		},
		Admin: adminResponse{
			BreederID:    r.Admin.BreederID,
			HoldingID:    r.Admin.HoldingID,
			LocalAgentID: r.Admin.LocalAgentID,
		},
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
