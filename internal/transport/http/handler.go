package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"cyberquiz-service/internal/app"
	"cyberquiz-service/internal/auth"
	"cyberquiz-service/internal/bank"
	"cyberquiz-service/internal/domain"
	"cyberquiz-service/internal/results"
)

// Handler translates HTTP requests into core commands. It renders state and
// holds no quiz logic of its own.
type Handler struct {
	service  *app.Service
	bank     *bank.Bank
	results  *results.Store
	gate     *auth.Gate
	verifier *auth.Client
}

func NewHandler(service *app.Service, questionBank *bank.Bank, resultStore *results.Store, gate *auth.Gate, verifier *auth.Client) *Handler {
	return &Handler{
		service:  service,
		bank:     questionBank,
		results:  resultStore,
		gate:     gate,
		verifier: verifier,
	}
}

// Register wires all routes onto the mux. Bank and schedule mutation,
// results and stats are admin-gated.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /availability", h.availability)
	mux.HandleFunc("GET /departments", h.departments)

	mux.HandleFunc("POST /attempts", h.startAttempt)
	mux.HandleFunc("GET /attempts/current", h.currentAttempt)
	mux.HandleFunc("POST /attempts/answer", h.selectAnswer)
	mux.HandleFunc("POST /attempts/next", h.nextQuestion)
	mux.HandleFunc("POST /attempts/previous", h.previousQuestion)
	mux.HandleFunc("POST /attempts/submit", h.submitAttempt)

	mux.HandleFunc("GET /bank", h.requireAdmin(h.getBank))
	mux.HandleFunc("PUT /bank", h.requireAdmin(h.replaceBank))
	mux.HandleFunc("DELETE /bank/{index}", h.requireAdmin(h.deleteQuestion))
	mux.HandleFunc("GET /bank/export", h.requireAdmin(h.exportBank))

	mux.HandleFunc("POST /schedule/enable", h.requireAdmin(h.enableSchedule))
	mux.HandleFunc("POST /schedule/disable", h.requireAdmin(h.disableSchedule))

	mux.HandleFunc("GET /results", h.requireAdmin(h.queryResults))
	mux.HandleFunc("GET /stats", h.requireAdmin(h.stats))

	mux.HandleFunc("GET /auth/url", h.authURL)
	mux.HandleFunc("GET /auth/status", h.authStatus)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/logout", h.logout)
}

// publicQuestion is the participant-facing question view: the correct index
// never leaves the server mid-attempt.
type publicQuestion struct {
	Text     string   `json:"question"`
	ImageURL string   `json:"image,omitempty"`
	Answers  []string `json:"answers"`
}

type snapshotPayload struct {
	State           app.AttemptState `json:"state"`
	Position        int              `json:"position"`
	Total           int              `json:"total"`
	Question        publicQuestion   `json:"question"`
	Answer          int              `json:"answer"`
	ProgressPercent int              `json:"progressPercent"`
}

func toSnapshotPayload(s app.Snapshot) snapshotPayload {
	return snapshotPayload{
		State:    s.State,
		Position: s.Position,
		Total:    s.Total,
		Question: publicQuestion{
			Text:     s.Question.Text,
			ImageURL: s.Question.ImageURL,
			Answers:  s.Question.Answers,
		},
		Answer:          s.Answer,
		ProgressPercent: s.ProgressPercent,
	}
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	eval := h.service.Availability(r.Context())
	schedule := h.service.Schedule(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  eval.Status,
		"message": eval.Message,
		"title":   schedule.Title,
	})
}

func (h *Handler) departments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"placeholder": domain.DepartmentPlaceholder,
		"departments": domain.Departments,
	})
}

func (h *Handler) startAttempt(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FullName   string `json:"fullName"`
		Department string `json:"department"`
	}
	if !readJSON(w, r, &payload) {
		return
	}
	snapshot, err := h.service.StartAttempt(r.Context(), payload.FullName, payload.Department)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSnapshotPayload(snapshot))
}

func (h *Handler) currentAttempt(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.AttemptSnapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotPayload(snapshot))
}

func (h *Handler) selectAnswer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Index int `json:"index"`
	}
	if !readJSON(w, r, &payload) {
		return
	}
	snapshot, err := h.service.SelectAnswer(r.Context(), payload.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotPayload(snapshot))
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.NextQuestion(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotPayload(snapshot))
}

func (h *Handler) previousQuestion(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.PreviousQuestion(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotPayload(snapshot))
}

func (h *Handler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	completed, err := h.service.SubmitAttempt(r.Context())
	if err != nil && !errors.Is(err, domain.ErrResultNotPersisted) {
		writeError(w, err)
		return
	}
	payload := map[string]any{
		"result":  completed.Result,
		"tier":    completed.Tier,
		"message": completed.Message,
	}
	if err != nil {
		payload["warning"] = "результат не вдалося зберегти"
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) getBank(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": h.bank.Load(r.Context()),
	})
}

func (h *Handler) replaceBank(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Questions []domain.Question `json:"questions"`
	}
	if !readJSON(w, r, &payload) {
		return
	}
	count, err := h.bank.Replace(r.Context(), payload.Questions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid index"})
		return
	}
	if err := h.bank.Delete(r.Context(), index); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": h.bank.Load(r.Context()),
	})
}

func (h *Handler) exportBank(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.bank.ExportSnapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="questions.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

func (h *Handler) enableSchedule(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title   string     `json:"title"`
		StartAt *time.Time `json:"startAt"`
		EndAt   *time.Time `json:"endAt"`
	}
	if !readJSON(w, r, &payload) {
		return
	}
	schedule, err := h.service.EnableSchedule(r.Context(), payload.Title, payload.StartAt, payload.EndAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (h *Handler) disableSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.service.DisableSchedule(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (h *Handler) queryResults(w http.ResponseWriter, r *http.Request) {
	filter := results.Filter{
		NameContains:       r.URL.Query().Get("name"),
		DepartmentContains: r.URL.Query().Get("department"),
	}
	order := results.SortOrder(r.URL.Query().Get("sort"))
	writeJSON(w, http.StatusOK, map[string]any{
		"results": h.results.Query(r.Context(), filter, order),
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.results.Stats(r.Context()))
}

func (h *Handler) authURL(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"authUrl": h.verifier.AuthURL()})
}

func (h *Handler) authStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"authorized": h.gate.IsAuthorized(r.Context()),
	})
}

// login blocks while the external service is polled, then caches the
// decision in the gate. The response is exactly one of the three outcomes.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	outcome, userData := h.verifier.Await(r.Context())
	payload := map[string]any{"outcome": outcome}
	if outcome == auth.OutcomeGranted {
		if _, err := h.gate.Grant(r.Context(), userData); err != nil {
			log.Printf("grant admin session failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "не вдалося зберегти сесію адміністратора"})
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}
	writeJSON(w, http.StatusUnauthorized, payload)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Revoke(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authorized": false})
}

// requireAdmin rejects requests without a valid, unexpired gate session.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.gate.IsAuthorized(r.Context()) {
			writeError(w, domain.ErrNotAuthorized)
			return
		}
		next(w, r)
	}
}

type errorPayload struct {
	Message string `json:"message"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorPayload{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrTestUnavailable):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoAttempt), errors.Is(err, domain.ErrAttemptCompleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyDepartment),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrNoQuestions),
		errors.Is(err, domain.ErrUnanswered),
		errors.Is(err, domain.ErrAnswerOutOfRange),
		errors.Is(err, domain.ErrEmptyQuestionText),
		errors.Is(err, domain.ErrWrongAnswerCount),
		errors.Is(err, domain.ErrEmptyAnswer),
		errors.Is(err, domain.ErrCorrectIndexRange),
		errors.Is(err, domain.ErrMissingTitle),
		errors.Is(err, domain.ErrMissingStart),
		errors.Is(err, domain.ErrMissingEnd),
		errors.Is(err, domain.ErrStartNotBeforeEnd),
		errors.Is(err, domain.ErrStartNotFuture):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
