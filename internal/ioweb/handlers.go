package ioweb

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/internal/ioexport"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioquery"
	gomi "github.com/HashiReo/nonoichi-waste-app/pkg"
	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/HashiReo/nonoichi-waste-app/pkg/query"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/go-chi/chi/v5"
)

// NextResponse is the body of /api/next.
type NextResponse struct {
	// Pickup is null when there is no upcoming event.
	Pickup *query.Pickup `json:"pickup"`

	// Resolution is set for item lookups.
	Resolution *query.Resolution `json:"resolution,omitempty"`
}

// ErrorResponse is the body of failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

func (s *Server) ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("pong"))
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": gomi.Version,
		"build":   gomi.Build,
	})
}

func (s *Server) items(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	if strings.TrimSpace(text) == "" {
		badRequest(w, "missing query parameter q")
		return
	}
	k, err := intParam(r, "k")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := s.querier.ResolveCategory(r.Context(), text, k)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	area := params.Get("area")
	item, category := params.Get("item"), params.Get("category")
	if area == "" || (item == "") == (category == "") {
		badRequest(w, "area and exactly one of item or category are required")
		return
	}
	asOf, err := ioquery.ParseTime(params.Get("as_of"), s.loc)
	if err != nil {
		writeError(w, err)
		return
	}
	if asOf.IsZero() {
		asOf = s.now().In(s.loc)
	}

	var res NextResponse
	if item != "" {
		res.Pickup, res.Resolution, err = s.querier.NextPickupForItem(
			r.Context(), area, item, asOf)
	} else {
		res.Pickup, err = s.querier.NextPickup(r.Context(), area, category, asOf)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) areas(w http.ResponseWriter, r *http.Request) {
	res, err := s.querier.Areas(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	res, err := s.querier.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// calendar serves the events of an area as an iCalendar feed. The range
// defaults to one year from today.
func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	area, err := url.PathUnescape(chi.URLParam(r, "area"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	params := r.URL.Query()

	now := s.now().In(s.loc)
	from, to := now, now.AddDate(1, 0, 0)
	if v := params.Get("from"); v != "" {
		if from, err = ioquery.ParseTime(v, s.loc); err != nil {
			writeError(w, err)
			return
		}
	}
	if v := params.Get("to"); v != "" {
		if to, err = ioquery.ParseTime(v, s.loc); err != nil {
			writeError(w, err)
			return
		}
	}
	alarm, err := intParam(r, "alarm")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	events, err := s.querier.Events(r.Context(), area, params.Get("category"), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no events for " + area})
		return
	}

	cal := ioexport.Calendar{
		Name:     "ごみ収集 " + events[0].AreaName,
		TimeZone: s.loc.String(),
		Alarm:    time.Duration(alarm) * time.Minute,
		Stamp:    now,
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if err = ioexport.WriteICS(w, cal, events); err != nil {
		writeError(w, err)
	}
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return 0, errors.New("parameter " + name + " must be a non-negative integer")
	}
	return i, nil
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

// writeError maps invalid input to 400 and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	res := ErrorResponse{Error: err.Error()}

	var gnErr *gn.Error
	if errors.As(err, &gnErr) {
		res.Code = int(gnErr.Code)
		if gnErr.Code == errcode.QueryInvalidInputError {
			status = http.StatusBadRequest
		}
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	enc := gnfmt.GNjson{}
	bs, err := enc.Encode(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(bs)
}
