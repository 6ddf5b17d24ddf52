// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"
	KeyWarning = "warning"
	KeyInfo    = "info"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Products
	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductDeleted    = "product.deleted"
	KeyProductNotFound   = "product.not_found"
	KeyProductOutOfStock = "product.out_of_stock"

	// Stores
	KeyStoreCreated     = "store.created"
	KeyStoreUpdated     = "store.updated"
	KeyStoreNotFound    = "store.not_found"
	KeyStoreApproved    = "store.approved"
	KeyStoreNotApproved = "store.not_approved"

	// Cart
	KeyCartItemAdded   = "cart.item_added"
	KeyCartItemRemoved = "cart.item_removed"
	KeyCartEmpty       = "cart.empty"

	// Orders
	KeyOrderPlaced        = "order.placed"
	KeyOrderNotFound      = "order.not_found"
	KeyOrderStatusUpdated = "order.status_updated"
	KeyOrderCancelled     = "order.cancelled"

	// Commissions and payouts
	KeyPayoutRequested     = "payout.requested"
	KeyPayoutNothingToPay  = "payout.nothing_to_pay"
	KeyCommissionsNotFound = "commission.not_found"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"
	KeyVendorRequired    = "vendor.required"

	// Webhooks
	KeyWebhookInvalidSignature = "webhook.invalid_signature"
	KeyWebhookProcessed        = "webhook.processed"
)
