package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/services"
	"github.com/AnshRaj112/emotion-tracker-backend/pkg/utils"
	"go.uber.org/zap"
)

type EmotionHandler struct {
	emotions *services.EmotionService
	log      *zap.SugaredLogger
}

func NewEmotionHandler(emotions *services.EmotionService, log *zap.SugaredLogger) *EmotionHandler {
	return &EmotionHandler{emotions: emotions, log: log}
}

// Record handles POST /emotions. 201 when the day had no entry yet, 200 when
// it was overwritten.
func (h *EmotionHandler) Record(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.RecordInput
	if !decodeBody(w, r, &req) {
		return
	}

	entry, created, err := h.emotions.RecordEmotion(r.Context(), user.ID, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, DataResponse{Success: true, Data: entry.View()})
}

// Monthly handles GET /emotions/monthly?year=&month=.
func (h *EmotionHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var verrs utils.ValidationErrors
	year := queryInt(r, "year", 1, 9999, &verrs)
	month := queryInt(r, "month", 1, 12, &verrs)
	if len(verrs) > 0 {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid query parameters", verrs)
		return
	}

	views, err := h.emotions.ListByMonth(r.Context(), user.ID, year, month)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// YearlyStats handles GET /emotions/yearly-stats?year=.
func (h *EmotionHandler) YearlyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var verrs utils.ValidationErrors
	year := queryInt(r, "year", 1, 9999, &verrs)
	if len(verrs) > 0 {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid query parameters", verrs)
		return
	}

	stats, err := h.emotions.YearlyCounts(r.Context(), user.ID, year)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, DataResponse{Success: true, Data: stats})
}

// History handles GET /emotions/history?date=.
func (h *EmotionHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if _, err := utils.ParseDate(date); err != nil {
		verrs := utils.ValidationErrors{{Field: "date", Message: "must be a date in YYYY-MM-DD format"}}
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid query parameters", verrs)
		return
	}

	revs, err := h.emotions.History(r.Context(), user.ID, date)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, DataResponse{Success: true, Data: revs})
}

// queryInt parses a required integer query parameter within [min, max].
func queryInt(r *http.Request, name string, min, max int, verrs *utils.ValidationErrors) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		verrs.Add(name, "is required")
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verrs.Add(name, "must be an integer")
		return 0
	}
	if n < min || n > max {
		verrs.Add(name, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
		return 0
	}
	return n
}
