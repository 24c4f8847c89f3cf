package report

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/widya-sms/widya-sms/internal/platform/httpx"
)

// Handler renders printable assignment rosters through Gotenberg.
type Handler struct {
	client *Client
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, pool *pgxpool.Pool, logger *slog.Logger) *Handler {
	return &Handler{client: client, pool: pool, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/assignments", h.assignmentRoster)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type rosterRow struct {
	Teacher string
	Subject string
	Grade   string
}

func (h *Handler) assignmentRoster(w http.ResponseWriter, r *http.Request) {
	yearID, err := strconv.ParseInt(r.URL.Query().Get("academic_year_id"), 10, 64)
	if err != nil || yearID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "academic_year_id is required")
		return
	}

	var yearName string
	if err := h.pool.QueryRow(r.Context(),
		`SELECT name FROM academic_years WHERE id = $1`, yearID).Scan(&yearName); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "academic year not found")
		return
	}

	rows, err := h.pool.Query(r.Context(), `
		SELECT t.full_name, s.name, g.name
		FROM teacher_assignments a
		JOIN teachers t ON t.id = a.teacher_id
		JOIN subjects s ON s.id = a.subject_id
		JOIN grade_levels g ON g.id = a.grade_level_id
		WHERE a.academic_year_id = $1
		ORDER BY g.name, s.name`, yearID)
	if err != nil {
		h.logger.Error("roster query", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	defer rows.Close()

	var roster []rosterRow
	for rows.Next() {
		var row rosterRow
		if err := rows.Scan(&row.Teacher, &row.Subject, &row.Grade); err != nil {
			h.logger.Error("roster scan", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		roster = append(roster, row)
	}
	if err := rows.Err(); err != nil {
		h.logger.Error("roster rows", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), rosterHTML(yearName, roster))
	if err != nil {
		h.logger.Error("roster render", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"roster-%d.pdf\"", yearID))
	_, _ = w.Write(pdf)
}

func rosterHTML(yearName string, roster []rosterRow) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><title>Teaching Roster</title>")
	b.WriteString("<style>body{font-family:sans-serif}table{border-collapse:collapse;width:100%}td,th{border:1px solid #999;padding:6px;text-align:left}</style>")
	b.WriteString("</head><body>")
	b.WriteString("<h1>Teaching Roster " + html.EscapeString(yearName) + "</h1>")
	b.WriteString("<p>Generated " + time.Now().Format("2006-01-02 15:04") + "</p>")
	b.WriteString("<table><tr><th>Grade</th><th>Subject</th><th>Teacher</th></tr>")
	for _, row := range roster {
		b.WriteString("<tr><td>" + html.EscapeString(row.Grade) + "</td><td>" +
			html.EscapeString(row.Subject) + "</td><td>" + html.EscapeString(row.Teacher) + "</td></tr>")
	}
	if len(roster) == 0 {
		b.WriteString("<tr><td colspan=\"3\">No assignments recorded.</td></tr>")
	}
	b.WriteString("</table></body></html>")
	return b.String()
}
