package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vehicle-route-service/internal/api/dto"
	"vehicle-route-service/internal/domain"
	"vehicle-route-service/internal/ports"
	"vehicle-route-service/internal/services"
)

// RoutePlanHandler exposes the plan lifecycle: submit, inspect, terminate,
// and mutate mid-solve.
type RoutePlanHandler struct {
	Registry *services.Registry
	Provider ports.TravelMatrixProvider
	// Gap between consecutive vehicle departures in reported schedules.
	DepartureBuffer time.Duration
}

// Create ingests a planning request, registers a session under a fresh id
// and starts solving in the background. The response body is the plain id.
func (h *RoutePlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RoutePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in, err := planInput(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := services.BuildRoutePlan(r.Context(), in, h.Provider)
	if err != nil {
		if badPlanInput(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("build route plan failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	id := uuid.NewString()
	sess := services.NewSession(plan)
	h.Registry.Put(id, sess)

	// Solving outlives the request.
	go func() {
		score := sess.Solve(context.Background())
		log.Printf("plan=%s solved score=%s", id, score)
	}()

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(id))
}

func (h *RoutePlanHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := h.Registry.Get(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "route plan not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SolverStatusResponse{
		ID:           id,
		SolverStatus: string(sess.Status()),
	})
}

func (h *RoutePlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := h.Registry.Get(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "route plan not found")
		return
	}

	buffer := h.DepartureBuffer
	if buffer <= 0 {
		buffer = services.DefaultDepartureBuffer
	}

	var proj services.PlanProjection
	status := sess.Status()
	sess.WithPlan(func(p *domain.RoutePlan) {
		proj = services.ProjectRoutePlan(p, status, buffer)
	})

	writeJSON(w, r, http.StatusOK, proj)
}

// Analyze scores the plan submitted in the request body and breaks the
// result down per constraint. The plan is built the same way Create builds
// it (including any pre-assigned vehicle chains) but is never registered or
// solved.
func (h *RoutePlanHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req dto.RoutePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in, err := planInput(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := services.BuildRoutePlan(r.Context(), in, h.Provider)
	if err != nil {
		if badPlanInput(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("build route plan failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, services.AnalyzePlan(plan))
}

// Terminate requests an early stop; the session keeps the best plan found.
func (h *RoutePlanHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.Registry.TerminateEarly(id) {
		writeError(w, r, http.StatusNotFound, "route plan not found")
		return
	}

	status := string(services.StatusNotSolving)
	if sess, ok := h.Registry.Get(id); ok {
		status = string(sess.Status())
	}
	writeJSON(w, r, http.StatusOK, dto.SolverStatusResponse{
		ID:           id,
		SolverStatus: status,
	})
}

// AddCustomer queues a dynamic visit insertion; applied immediately when
// the session is idle, otherwise between solver iterations.
func (h *RoutePlanHandler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := h.Registry.Get(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "route plan not found")
		return
	}

	var req dto.AddCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	change := services.AddVisit{
		Visit:   visitFromRequest(req.Customer),
		ToNew:   legFromRequest(req.ToNew),
		FromNew: legFromRequest(req.FromNew),
	}

	if err := sess.QueueChange(change); err != nil {
		if errors.Is(err, domain.ErrInsertionUnresolvable) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("add customer failed: plan=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SolverStatusResponse{
		ID:           id,
		SolverStatus: string(sess.Status()),
	})
}

// Clear stops every running solve and drops all sessions.
func (h *RoutePlanHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.Registry.Clear()
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func badPlanInput(err error) bool {
	return errors.Is(err, domain.ErrInvalidLocation) ||
		errors.Is(err, domain.ErrDanglingReference) ||
		errors.Is(err, domain.ErrMatrixShapeMismatch)
}

func planInput(req dto.RoutePlanRequest) (services.BuildPlanInput, error) {
	if len(req.Depots) == 0 {
		return services.BuildPlanInput{}, errors.New("at least one depot is required")
	}
	if len(req.Vehicles) == 0 {
		return services.BuildPlanInput{}, errors.New("at least one vehicle is required")
	}

	in := services.BuildPlanInput{
		Name:               req.Name,
		StartDateTime:      req.StartDateTime,
		EndDateTime:        req.EndDateTime,
		ExtraLocationCount: req.ExtraLocationCount,
		SouthWestCorner:    coordFromList(req.SouthWestCorner),
		NorthEastCorner:    coordFromList(req.NorthEastCorner),
	}

	for _, d := range req.Depots {
		in.Depots = append(in.Depots, services.DepotInput{
			ID:      d.ID,
			Address: d.Address,
			Coord:   coordFromList(d.Location),
		})
	}
	for _, v := range req.Vehicles {
		in.Vehicles = append(in.Vehicles, services.VehicleInput{
			ID:                      v.ID,
			VehicleType:             v.VehicleType,
			VehicleNo:               v.VehicleNo,
			Capacity:                v.Capacity,
			AdditionalCapacityUnit:  v.AdditionalCapacityUnit,
			AdditionalCapacityValue: v.AdditionalCapacityValue,
			Mileage:                 v.Mileage,
			DepartureTime:           v.DepartureTime,
			DepotID:                 v.Depot,
			Customers:               v.Customers,
		})
	}
	for _, c := range req.Customers {
		in.Customers = append(in.Customers, services.VisitInput{
			ID:                     c.ID,
			Name:                   c.Name,
			Coord:                  coordFromList(c.Location),
			ReadyTime:              c.ReadyTime,
			DueTime:                c.DueTime,
			ServiceDurationSeconds: c.ServiceDuration,
			Demand:                 c.Demand,
		})
	}

	if req.DurationResponse != nil {
		in.Durations = req.DurationResponse.Durations
		in.Distances = req.DurationResponse.Distances
	}

	return in, nil
}

func visitFromRequest(c dto.CustomerRequest) domain.Visit {
	service := time.Duration(c.ServiceDuration) * time.Second
	if service <= 0 {
		service = 600 * time.Second
	}
	return domain.Visit{
		ID:              c.ID,
		Name:            c.Name,
		Location:        domain.Location{Coord: coordFromList(c.Location)},
		ReadyTime:       c.ReadyTime,
		DueTime:         c.DueTime,
		ServiceDuration: service,
		Demand:          c.Demand,
		IsExtra:         true,
		BookingDate:     c.BookingDate,
	}
}

func legFromRequest(l *dto.MatrixLegRequest) *domain.MatrixLeg {
	if l == nil {
		return nil
	}
	return &domain.MatrixLeg{
		DurationSeconds: float64(l.DurationSeconds),
		DistanceMeters:  float64(l.DistanceMeters),
	}
}

func coordFromList(l []float64) domain.Coordinates {
	if len(l) < 2 {
		return domain.Coordinates{}
	}
	return domain.Coordinates{Lon: l[0], Lat: l[1]}
}
