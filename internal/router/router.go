// Package router wires the HTTP endpoints to the service layer and maps
// service errors to status codes. Error payloads never expose internals.
package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"extracker/internal/gzippedhttp"
	"extracker/internal/logger"
	"extracker/internal/models"
	"extracker/internal/service"
	"extracker/internal/storage"
)

// Router holds the handler dependencies: the application service and the
// directory with the static root page.
type Router struct {
	service   *service.Service
	staticDir string
}

// New builds the chi router with logging, CORS, and gzip middleware and
// registers all endpoints.
func New(svc *service.Service, staticDir string) *chi.Mux {
	theRouter := &Router{
		service:   svc,
		staticDir: staticDir,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
		}),
	)

	router.Get(`/`, theRouter.GetMainpage)
	router.Handle(
		`/public/*`,
		http.StripPrefix("/public/", http.FileServer(http.Dir(staticDir))),
	)

	// Static files carry their own Content-Length, so gzip stays API-only.
	router.Route(`/api`, func(api chi.Router) {
		api.Use(
			gzippedhttp.UngzipRequest,
			gzippedhttp.GzipResponse,
		)
		api.Post(`/users`, theRouter.PostApiusers)
		api.Get(`/users`, theRouter.GetApiusers)
		api.Post(`/users/{userID}/exercises`, theRouter.PostApiusersexercises)
		api.Get(`/users/{userID}/logs`, theRouter.GetApiuserslogs)
	})

	return router
}

// GetMainpage serves the static index page.
func (rt *Router) GetMainpage(res http.ResponseWriter, req *http.Request) {
	http.ServeFile(res, req, filepath.Join(rt.staticDir, "index.html"))
}

// PostApiusers creates a new user from a `username` form field or JSON body.
func (rt *Router) PostApiusers(res http.ResponseWriter, req *http.Request) {
	username, err := readUsername(req)
	if err != nil {
		writeError(res, http.StatusBadRequest, "Username is required")
		return
	}

	userResponse, err := rt.service.CreateUser(req.Context(), username)
	if err != nil {
		writeServiceError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, userResponse)
}

// GetApiusers lists every user as {username, _id}.
func (rt *Router) GetApiusers(res http.ResponseWriter, req *http.Request) {
	users, err := rt.service.ListUsers(req.Context())
	if err != nil {
		writeServiceError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, users)
}

// PostApiusersexercises appends an exercise to the user's log.
func (rt *Router) PostApiusersexercises(res http.ResponseWriter, req *http.Request) {
	description, duration, date, err := readExerciseInput(req)
	if err != nil {
		writeError(res, http.StatusBadRequest, "Description and duration are required")
		return
	}

	exerciseResponse, err := rt.service.AddExercise(
		req.Context(),
		chi.URLParam(req, "userID"),
		description,
		duration,
		date,
	)
	if err != nil {
		writeServiceError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, exerciseResponse)
}

// GetApiuserslogs returns the filtered, truncated projection of the user's
// exercise log.
func (rt *Router) GetApiuserslogs(res http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	logsResponse, err := rt.service.GetLogs(
		req.Context(),
		chi.URLParam(req, "userID"),
		query.Get("from"),
		query.Get("to"),
		query.Get("limit"),
	)
	if err != nil {
		writeServiceError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, logsResponse)
}

type createUserRequest struct {
	Username string `json:"username"`
}

type addExerciseRequest struct {
	Description string          `json:"description"`
	Duration    json.RawMessage `json:"duration"`
	Date        string          `json:"date"`
}

func isJSONRequest(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Content-Type"), "application/json")
}

func readUsername(req *http.Request) (string, error) {
	if isJSONRequest(req) {
		var request createUserRequest
		if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
			return "", err
		}
		return request.Username, nil
	}

	if err := req.ParseForm(); err != nil {
		return "", err
	}

	return req.FormValue("username"), nil
}

// readExerciseInput extracts the raw description, duration, and date from
// either a urlencoded form or a JSON body. Duration stays textual; the
// service does the numeric coercion.
func readExerciseInput(req *http.Request) (description, duration, date string, err error) {
	if isJSONRequest(req) {
		var request addExerciseRequest
		if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
			return "", "", "", err
		}
		rawDuration := bytes.Trim(bytes.TrimSpace(request.Duration), `"`)
		if bytes.Equal(rawDuration, []byte("null")) {
			rawDuration = nil
		}
		return request.Description, string(rawDuration), request.Date, nil
	}

	if err := req.ParseForm(); err != nil {
		return "", "", "", err
	}

	return req.FormValue("description"), req.FormValue("duration"), req.FormValue("date"), nil
}

func writeJSON(res http.ResponseWriter, statusCode int, payload any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	if err := json.NewEncoder(res).Encode(payload); err != nil {
		logger.Log.Debugln("error encoding response:", err)
	}
}

func writeError(res http.ResponseWriter, statusCode int, message string) {
	writeJSON(res, statusCode, models.ErrorResponse{Error: message})
}

// writeServiceError translates service and storage sentinel errors into the
// wire-exact status codes and messages.
func writeServiceError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameRequired):
		writeError(res, http.StatusBadRequest, "Username is required")

	case errors.Is(err, storage.ErrUsernameTaken):
		writeError(res, http.StatusBadRequest, "Username already taken")

	case errors.Is(err, service.ErrExerciseFieldsRequired):
		writeError(res, http.StatusBadRequest, "Description and duration are required")

	case errors.Is(err, service.ErrInvalidDuration):
		writeError(res, http.StatusBadRequest, "Duration must be a number")

	case errors.Is(err, service.ErrInvalidLimit):
		writeError(res, http.StatusBadRequest, "Limit must be a number")

	case errors.Is(err, storage.ErrUserNotFound):
		writeError(res, http.StatusNotFound, "User not found")

	default:
		logger.Log.Debugln("unexpected error:", err)
		writeError(res, http.StatusInternalServerError, "Server error")
	}
}
