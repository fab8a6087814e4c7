package httpapi

import "fmt"

// Backend endpoint paths, kept in one place like the frontend's endpoint map.
const (
	EndpointLogin   = "/api/v1/auth/login"
	EndpointSignup  = "/api/v1/auth/signup"
	EndpointLogout  = "/api/v1/auth/logout"
	EndpointMe      = "/api/v1/auth/me"
	EndpointRefresh = "/api/v1/auth/refresh"

	EndpointProducts           = "/api/v1/products"
	EndpointProductCategories  = "/api/v1/products/categories"
	EndpointProductFeatured    = "/api/v1/products/featured"
	EndpointProductSuggestions = "/api/v1/products/search/suggestions"

	EndpointCart    = "/api/v1/cart"
	EndpointCartAdd = "/api/v1/cart/add"

	EndpointOrders = "/api/v1/orders"

	EndpointFavorites = "/api/v1/favorites"

	EndpointAdminStats    = "/api/v1/admin/stats"
	EndpointAdminProducts = "/api/v1/admin/products"
	EndpointAdminOrders   = "/api/v1/admin/orders"
)

func EndpointProduct(id string) string {
	return fmt.Sprintf("%s/%s", EndpointProducts, id)
}

func EndpointCartItem(productID string) string {
	return fmt.Sprintf("%s/items/%s", EndpointCart, productID)
}

func EndpointOrder(id string) string {
	return fmt.Sprintf("%s/%s", EndpointOrders, id)
}

func EndpointOrderTracking(id string) string {
	return fmt.Sprintf("%s/%s/tracking", EndpointOrders, id)
}

func EndpointFavorite(productID string) string {
	return fmt.Sprintf("%s/%s", EndpointFavorites, productID)
}

func EndpointFavoriteCheck(productID string) string {
	return fmt.Sprintf("%s/%s/check", EndpointFavorites, productID)
}

func EndpointAdminProduct(id string) string {
	return fmt.Sprintf("%s/%s", EndpointAdminProducts, id)
}

func EndpointAdminOrder(id string) string {
	return fmt.Sprintf("%s/%s", EndpointAdminOrders, id)
}

func EndpointAdminOrderStatus(id string) string {
	return fmt.Sprintf("%s/%s/status", EndpointAdminOrders, id)
}
