package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tradeyard/tradeyard-backend/api/middleware"
	"github.com/tradeyard/tradeyard-backend/api/validators"
	pkgerrors "github.com/tradeyard/tradeyard-backend/pkg/errors"
	"github.com/tradeyard/tradeyard-backend/pkg/pagination"
)

type actor struct {
	UserID uuid.UUID
	Role   string
	ShopID *uuid.UUID
}

func actorFromRequest(r *http.Request) (actor, error) {
	ctx := r.Context()

	userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
	if err != nil {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}

	act := actor{UserID: userID, Role: middleware.RoleFromContext(ctx)}
	if raw := middleware.ShopIDFromContext(ctx); raw != "" {
		shopID, err := uuid.Parse(raw)
		if err != nil {
			return actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "invalid shop context")
		}
		act.ShopID = &shopID
	}
	return act, nil
}

func parseUUIDField(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

func listParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
