package apperrors

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// RespondJSON writes a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, statusCode int, object any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(object)
}

// RespondError writes the standard {"error": ...} envelope for err.
// Internal errors are logged server-side and masked from the caller.
func RespondError(w http.ResponseWriter, err error) {
	if KindOf(err) == KindInternal {
		log.WithError(err).Error("internal error")
	}
	RespondJSON(w, StatusCode(err), map[string]string{"error": PublicMessage(err)})
}
