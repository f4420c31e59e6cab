package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type tracker interface {
	WeekPlan(ctx context.Context) (WeekPlan, error)
	AddPlanExercise(ctx context.Context, slot WeekdaySlot, input ExerciseInput) (*TemplateExercise, error)
	UpdatePlanExercise(ctx context.Context, slot WeekdaySlot, id string, input ExerciseInput) (*TemplateExercise, error)
	RemovePlanExercise(ctx context.Context, slot WeekdaySlot, id string) error
	Day(ctx context.Context, date Date) (*Day, error)
	Toggle(ctx context.Context, date Date, source Source, id string) (*Occurrence, error)
	AddExtra(ctx context.Context, date Date, input ExerciseInput) (*ExtraExercise, error)
	RemoveExtra(ctx context.Context, date Date, id string) (bool, error)
	Month(ctx context.Context, year int, month time.Month) ([]DaySummary, error)
	TodayCard(ctx context.Context, today Date) (*TodayCard, error)
	Streak(ctx context.Context, today Date) (int, error)
	WeeklyHistogram(ctx context.Context, anchor Date) (*WeeklyHistogram, error)
}

type Handler struct {
	tracker  tracker
	location *time.Location
	now      func() time.Time
}

// NewHandler creates the HTTP handler. "Today" defaults to the wall clock date in location.
func NewHandler(tracker tracker, location *time.Location) *Handler {
	if location == nil {
		location = time.Local
	}
	return &Handler{
		tracker:  tracker,
		location: location,
		now:      time.Now,
	}
}

// SetupRoutes registers the read routes on r, and the mutating routes on a subrouter
// guarded by writeMiddleware (auth, rate limiting).
func (h *Handler) SetupRoutes(r *mux.Router, writeMiddleware ...mux.MiddlewareFunc) {
	r.HandleFunc("/plan", h.HandleGetPlan).Methods("GET", "OPTIONS").Name("get-plan")
	r.HandleFunc("/days/{date}", h.HandleGetDay).Methods("GET", "OPTIONS").Name("get-day")
	r.HandleFunc("/calendar/{year}/{month}", h.HandleMonth).Methods("GET", "OPTIONS").Name("get-month")
	r.HandleFunc("/today", h.HandleToday).Methods("GET", "OPTIONS").Name("get-today")
	r.HandleFunc("/stats/streak", h.HandleStreak).Methods("GET", "OPTIONS").Name("get-streak")
	r.HandleFunc("/stats/weekly", h.HandleWeekly).Methods("GET", "OPTIONS").Name("get-weekly")

	w := r.NewRoute().Subrouter()
	w.Use(writeMiddleware...)
	w.HandleFunc("/plan/{weekday}", h.HandleAddPlanExercise).Methods("POST", "OPTIONS").Name("add-plan-exercise")
	w.HandleFunc("/plan/{weekday}/{id}", h.HandleUpdatePlanExercise).Methods("PUT", "OPTIONS").Name("update-plan-exercise")
	w.HandleFunc("/plan/{weekday}/{id}", h.HandleRemovePlanExercise).Methods("DELETE", "OPTIONS").Name("remove-plan-exercise")
	w.HandleFunc("/days/{date}/toggle", h.HandleToggle).Methods("POST", "OPTIONS").Name("toggle")
	w.HandleFunc("/days/{date}/extras", h.HandleAddExtra).Methods("POST", "OPTIONS").Name("add-extra")
	w.HandleFunc("/days/{date}/extras/{id}", h.HandleRemoveExtra).Methods("DELETE", "OPTIONS").Name("remove-extra")
}

func (h *Handler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.plan.get")
	defer span.End()

	plan, err := h.tracker.WeekPlan(ctx)
	if err != nil {
		h.writeError(w, "get plan", err)
		return
	}
	pkg.WriteJSON(w, plan, http.StatusOK)
}

func (h *Handler) HandleAddPlanExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.plan.add")
	defer span.End()

	slot, err := ParseWeekdaySlot(mux.Vars(r)["weekday"])
	if err != nil {
		http.Error(w, "invalid weekday", http.StatusBadRequest)
		return
	}

	var input ExerciseInput
	if !decodeJSONBody(w, r, &input) {
		return
	}

	exercise, err := h.tracker.AddPlanExercise(ctx, slot, input)
	if err != nil {
		h.writeError(w, "add plan exercise", err)
		return
	}
	pkg.WriteJSON(w, exercise, http.StatusCreated)
}

func (h *Handler) HandleUpdatePlanExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.plan.update")
	defer span.End()

	vars := mux.Vars(r)
	slot, err := ParseWeekdaySlot(vars["weekday"])
	if err != nil {
		http.Error(w, "invalid weekday", http.StatusBadRequest)
		return
	}

	var input ExerciseInput
	if !decodeJSONBody(w, r, &input) {
		return
	}

	exercise, err := h.tracker.UpdatePlanExercise(ctx, slot, vars["id"], input)
	if err != nil {
		h.writeError(w, "update plan exercise", err)
		return
	}
	pkg.WriteJSON(w, exercise, http.StatusOK)
}

func (h *Handler) HandleRemovePlanExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.plan.remove")
	defer span.End()

	vars := mux.Vars(r)
	slot, err := ParseWeekdaySlot(vars["weekday"])
	if err != nil {
		http.Error(w, "invalid weekday", http.StatusBadRequest)
		return
	}

	if err := h.tracker.RemovePlanExercise(ctx, slot, vars["id"]); err != nil {
		h.writeError(w, "remove plan exercise", err)
		return
	}
	pkg.WriteTextResponseOK(w, "removed")
}

func (h *Handler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.day")
	defer span.End()

	date, err := ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	day, err := h.tracker.Day(ctx, date)
	if err != nil {
		h.writeError(w, "get day", err)
		return
	}
	pkg.WriteJSON(w, day, http.StatusOK)
}

type toggleRequest struct {
	Source Source `json:"source"`
	ID     string `json:"id"`
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.toggle")
	defer span.End()

	date, err := ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	var req toggleRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	occurrence, err := h.tracker.Toggle(ctx, date, req.Source, req.ID)
	if err != nil {
		h.writeError(w, "toggle", err)
		return
	}
	if occurrence == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	pkg.WriteJSON(w, occurrence, http.StatusOK)
}

func (h *Handler) HandleAddExtra(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.extras.add")
	defer span.End()

	date, err := ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	var input ExerciseInput
	if !decodeJSONBody(w, r, &input) {
		return
	}

	extra, err := h.tracker.AddExtra(ctx, date, input)
	if err != nil {
		h.writeError(w, "add extra", err)
		return
	}
	pkg.WriteJSON(w, extra, http.StatusCreated)
}

func (h *Handler) HandleRemoveExtra(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.extras.remove")
	defer span.End()

	vars := mux.Vars(r)
	date, err := ParseDate(vars["date"])
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	removed, err := h.tracker.RemoveExtra(ctx, date, vars["id"])
	if err != nil {
		h.writeError(w, "remove extra", err)
		return
	}
	if !removed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	pkg.WriteTextResponseOK(w, "removed")
}

func (h *Handler) HandleMonth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.month")
	defer span.End()

	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return
	}

	summaries, err := h.tracker.Month(ctx, year, time.Month(month))
	if err != nil {
		h.writeError(w, "get month", err)
		return
	}
	pkg.WriteJSON(w, summaries, http.StatusOK)
}

func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.today")
	defer span.End()

	today, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	card, err := h.tracker.TodayCard(ctx, today)
	if err != nil {
		h.writeError(w, "get today card", err)
		return
	}
	pkg.WriteJSON(w, card, http.StatusOK)
}

type streakResponse struct {
	Today  Date `json:"today"`
	Streak int  `json:"streak"`
}

func (h *Handler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.streak")
	defer span.End()

	today, ok := h.dateParam(w, r, "today")
	if !ok {
		return
	}

	streak, err := h.tracker.Streak(ctx, today)
	if err != nil {
		h.writeError(w, "get streak", err)
		return
	}
	pkg.WriteJSON(w, streakResponse{Today: today, Streak: streak}, http.StatusOK)
}

func (h *Handler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.weekly")
	defer span.End()

	anchor, ok := h.dateParam(w, r, "anchor")
	if !ok {
		return
	}

	histogram, err := h.tracker.WeeklyHistogram(ctx, anchor)
	if err != nil {
		h.writeError(w, "get weekly histogram", err)
		return
	}
	pkg.WriteJSON(w, histogram, http.StatusOK)
}

// Today returns the current wall clock date in the handler's location.
func (h *Handler) Today() Date {
	return DateOf(h.now().In(h.location))
}

// dateParam reads an optional date query param, falling back to today.
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string) (Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return h.Today(), true
	}
	date, err := ParseDate(raw)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return Date{}, false
	}
	return date, true
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidWeekday),
		errors.Is(err, ErrInvalidSource),
		errors.Is(err, ErrInvalidExercise):
		log.Debugf("%s: %s", op, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrExerciseNotFound):
		http.Error(w, "exercise not found", http.StatusNotFound)
	case errors.Is(err, ErrVersionConflict):
		log.Warnf("%s: %s", op, err)
		http.Error(w, "concurrent update, try again", http.StatusConflict)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Debugf("decode %T: %s", dst, err)
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}
