package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/api/shared"
	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
)

// requireLearner returns the authenticated learner id. It writes a 401
// response and returns false when the auth middleware did not run.
func requireLearner(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	learnerID, ok := shared.LearnerID(r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context(), log).Warn("learner id not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return learnerID, true
}

// getPathID returns the trimmed chi path parameter name. Catalog ids are
// opaque strings, so only emptiness is checked.
func getPathID(r *http.Request, name string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, name))
	if id == "" {
		return "", domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	return id, nil
}

// getQueryInt parses the optional integer query parameter name. It returns
// fallback when the parameter is absent.
func getQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrValidation)
	}
	return n, nil
}

// learnerAndPathID combines requireLearner and getPathID, writing the error
// response itself when either fails.
func learnerAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	log *slog.Logger,
) (uuid.UUID, string, bool) {
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return uuid.Nil, "", false
	}

	id, err := getPathID(r, name)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), log).
			Debug("invalid path parameter", slog.String("param_name", name))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, "", false
	}
	return learnerID, id, true
}
