package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

const contentType = "application/json; charset=UTF-8"

// sendResponse writes body verbatim. Status and error replies are plain text
// even though the content type says JSON.
func sendResponse(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Warn("error writing response", "error", err)
	}
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Warn("error encoding response", "error", err)
		}
	}
}

func badRequest(w http.ResponseWriter, message string) {
	sendResponse(w, http.StatusBadRequest, "Bad Request: "+message)
}

func methodNotAllowed(w http.ResponseWriter) {
	sendResponse(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// internalError logs err and replies without exposing it.
func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "method", r.Method, "path", r.URL.Path)
	sendResponse(w, http.StatusInternalServerError, "Internal Server Error")
}

// decodeJSON decodes a JSON request body into the given target. The gateway
// owns closing the body.
func decodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

// decodeFailed maps a body decode error to 413 when the size limit was hit
// and 400 otherwise.
func decodeFailed(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		sendResponse(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large")
		return
	}
	badRequest(w, "invalid JSON body")
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	sendResponse(w, http.StatusNotFound, "Not Found")
}
