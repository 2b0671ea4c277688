package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tradeyard/tradeyard-backend/api/responses"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
	pkgerrors "github.com/tradeyard/tradeyard-backend/pkg/errors"
	"github.com/tradeyard/tradeyard-backend/pkg/logger"
)

// ShopContext rejects requests whose token carries no active shop.
func ShopContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ShopIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ShopFetcher interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
}

// RequireShopAccess gates shop-scoped routes. Super admins pass through,
// store owners must own the active shop, staff are trusted to the shop
// their signed token names.
func RequireShopAccess(shops ShopFetcher, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			role := RoleFromContext(ctx)
			if role == string(enums.RoleSuperAdmin) || role == string(enums.RoleStaff) {
				next.ServeHTTP(w, r)
				return
			}
			if role != string(enums.RoleStoreOwner) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shop role required"))
				return
			}

			if shops == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop fetcher unavailable"))
				return
			}

			userID, err := uuid.Parse(UserIDFromContext(ctx))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}
			shopID, err := uuid.Parse(ShopIDFromContext(ctx))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shop context required"))
				return
			}

			shop, err := shops.GetByID(ctx, shopID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if shop == nil || shop.OwnerID != userID {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shop access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
