package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"absence-instances/internal/absence"
	"absence-instances/internal/config"
	"absence-instances/internal/models"
	"absence-instances/internal/sink"
	"absence-instances/internal/util"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Reporter computes absence instances for a period.
type Reporter interface {
	Run(ctx context.Context, period models.Period) (*absence.Report, error)
}

// InstanceCache serves previously computed partitions.
type InstanceCache interface {
	Lookup(ctx context.Context, period models.Period, key models.PartitionKey) ([]models.ReportRow, error)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type APIHandler struct {
	reporter      Reporter
	cache         InstanceCache
	db            pinger
	defaultPeriod models.Period
	log           *zap.Logger
}

// NewAPIHandler wires the report endpoints. cache and db may be nil.
func NewAPIHandler(reporter Reporter, cache InstanceCache, db pinger, defaultPeriod models.Period, log *zap.Logger) *APIHandler {
	return &APIHandler{
		reporter:      reporter,
		cache:         cache,
		db:            db,
		defaultPeriod: defaultPeriod,
		log:           log,
	}
}

// JSON response helpers
func (h *APIHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (h *APIHandler) jsonError(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

type rejectedPartition struct {
	StudentID     string `json:"student_unique_id"`
	ApplicationID string `json:"application_id"`
	Date          string `json:"date"`
	PeriodID      string `json:"attendance_roll_call_id"`
	Reason        string `json:"reason"`
}

type absencesResponse struct {
	sink.Document
	Source   string              `json:"source"`
	Rejected []rejectedPartition `json:"rejected"`
}

// GET /api/absences?start=YYYY-MM-DD&end=YYYY-MM-DD&student_id=&application_id=
func (h *APIHandler) GetAbsences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.jsonError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q := r.URL.Query()
	period, err := h.periodFromQuery(q.Get("start"), q.Get("end"))
	if err != nil {
		h.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	studentID := strings.TrimSpace(q.Get("student_id"))
	applicationID := strings.TrimSpace(q.Get("application_id"))

	if h.cache != nil && studentID != "" && applicationID != "" {
		key := models.PartitionKey{StudentID: studentID, ApplicationID: applicationID}
		rows, err := h.cache.Lookup(r.Context(), period, key)
		switch {
		case err == nil:
			h.jsonResponse(w, http.StatusOK, absencesResponse{
				Document: sink.Document{
					PeriodStartDate: util.FormatDate(period.Start),
					PeriodEndDate:   util.FormatDate(period.End),
					Instances:       rows,
				},
				Source:   "cache",
				Rejected: []rejectedPartition{},
			})
			return
		case !errors.Is(err, sink.ErrCacheMiss):
			h.log.Warn("Absence cache lookup failed, computing instead", zap.Error(err))
		}
	}

	report, err := h.reporter.Run(r.Context(), period)
	if err != nil {
		h.log.Error("Failed to compute absences", zap.Error(err))
		switch {
		case models.IsSourceUnavailable(err):
			h.jsonError(w, http.StatusServiceUnavailable, "Attendance source unavailable")
		case errors.Is(err, absence.ErrRejectedPartitions):
			h.jsonError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.jsonError(w, http.StatusInternalServerError, "Failed to compute absences")
		}
		return
	}

	matches := func(key models.PartitionKey) bool {
		return (studentID == "" || key.StudentID == studentID) &&
			(applicationID == "" || key.ApplicationID == applicationID)
	}

	instances := make([]models.AbsenceInstance, 0, len(report.Instances))
	for _, inst := range report.Instances {
		if matches(inst.Key()) {
			instances = append(instances, inst)
		}
	}

	rejected := make([]rejectedPartition, 0, len(report.Rejected))
	for _, rj := range report.Rejected {
		if !matches(rj.Key) {
			continue
		}
		rejected = append(rejected, rejectedPartition{
			StudentID:     rj.Key.StudentID,
			ApplicationID: rj.Key.ApplicationID,
			Date:          util.FormatDate(rj.Date),
			PeriodID:      rj.PeriodID,
			Reason:        rj.Reason,
		})
	}

	h.jsonResponse(w, http.StatusOK, absencesResponse{
		Document: sink.NewDocument(report.Run, models.ReportRows(instances)),
		Source:   "computed",
		Rejected: rejected,
	})
}

func (h *APIHandler) periodFromQuery(start, end string) (models.Period, error) {
	if start == "" && end == "" {
		return h.defaultPeriod, nil
	}
	if start == "" {
		start = util.FormatDate(h.defaultPeriod.Start)
	}
	if end == "" {
		end = util.FormatDate(h.defaultPeriod.End)
	}
	return config.ParsePeriod(start, end)
}

// GET /healthz
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			h.log.Warn("Health check failed", zap.Error(err))
			h.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
