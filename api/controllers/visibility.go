package controllers

import (
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
)

// orderVisibleTo applies the read fence for order detail: the owning
// customer, the fulfilling shop and platform admins.
func orderVisibleTo(act actor, order *models.Order) bool {
	if order == nil {
		return false
	}
	if act.Role == string(enums.RoleSuperAdmin) {
		return true
	}
	if order.CustomerID == act.UserID {
		return true
	}
	if act.ShopID != nil && order.ShopID != nil && *order.ShopID == *act.ShopID {
		return true
	}
	return false
}
