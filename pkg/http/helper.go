package http

import (
	"net/http"
	"strconv"

	"github.com/sanchez188/serviProf/pkg/config"
	apperrors "github.com/sanchez188/serviProf/pkg/errors"
	"github.com/sanchez188/serviProf/pkg/model"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractActor reads the identity headers set by the API gateway after
// authentication. Requests without them are rejected as unauthenticated.
func ExtractActor(r *http.Request) (model.Actor, error) {
	id := r.Header.Get("X-Actor-ID")
	if id == "" {
		return model.Actor{}, apperrors.Unauthorized("missing X-Actor-ID header")
	}

	role := model.ActorRole(r.Header.Get("X-Actor-Role"))
	switch role {
	case model.RoleClient, model.RoleProfessional:
	default:
		return model.Actor{}, apperrors.Unauthorized("missing or invalid X-Actor-Role header")
	}

	return model.Actor{ID: id, Role: role}, nil
}
