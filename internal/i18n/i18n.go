// internal/i18n/i18n.go
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

var instance *I18n
var once sync.Once

func Initialize() error {
	var err error
	once.Do(func() {
		instance = &I18n{
			translations: map[string]map[string]string{
				"en": defaultEnglish(),
			},
			defaultLang: "en",
		}
		err = instance.LoadTranslations("./internal/i18n/locales")
	})
	return err
}

// LoadTranslations overlays locale files on top of the built-in defaults.
// Missing files are not an error; the English defaults always apply.
func (i *I18n) LoadTranslations(localesPath string) error {
	localeFiles := []string{"en.json", "es.json"}

	for _, file := range localeFiles {
		lang := strings.TrimSuffix(file, ".json")
		filePath := filepath.Join(localesPath, file)

		data, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", filePath, err)
		}

		i.mu.Lock()
		if i.translations[lang] == nil {
			i.translations[lang] = make(map[string]string)
		}
		for k, v := range translations {
			i.translations[lang][k] = v
		}
		i.mu.Unlock()
	}

	return nil
}

func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// Try to get translation for requested language
	if translations, exists := i.translations[lang]; exists {
		if text, exists := translations[key]; exists {
			if len(args) > 0 {
				return fmt.Sprintf(text, args...)
			}
			return text
		}
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if translations, exists := i.translations[i.defaultLang]; exists {
			if text, exists := translations[key]; exists {
				if len(args) > 0 {
					return fmt.Sprintf(text, args...)
				}
				return text
			}
		}
	}

	// Last resort: the key itself
	return key
}

// T translates a key using the package singleton.
func T(lang, key string, args ...interface{}) string {
	if instance == nil {
		Initialize()
	}
	return instance.T(lang, key, args...)
}

func defaultEnglish() map[string]string {
	return map[string]string{
		KeySuccess: "Success",
		KeyError:   "Error",
		KeyWarning: "Warning",
		KeyInfo:    "Info",

		KeyAuthRequired:           "Authentication required",
		KeyAuthInvalidToken:       "Invalid authentication token",
		KeyAuthTokenExpired:       "Authentication token expired",
		KeyAuthInvalidCredentials: "Invalid email or password",
		KeyAuthUserNotFound:       "User not found",
		KeyAuthUserExists:         "User already exists",
		KeyAuthLoginSuccess:       "Logged in successfully",
		KeyAuthLogoutSuccess:      "Logged out successfully",
		KeyAuthRegisterSuccess:    "Registered successfully",

		KeyValidationInvalid: "Invalid %s",

		KeyProductCreated:    "Product created",
		KeyProductUpdated:    "Product updated",
		KeyProductDeleted:    "Product deleted",
		KeyProductNotFound:   "Product not found",
		KeyProductOutOfStock: "Product is out of stock",

		KeyStoreCreated:     "Store created",
		KeyStoreUpdated:     "Store updated",
		KeyStoreNotFound:    "Store not found",
		KeyStoreApproved:    "Store approved",
		KeyStoreNotApproved: "Store is not approved for selling",

		KeyCartItemAdded:   "Item added to cart",
		KeyCartItemRemoved: "Item removed from cart",
		KeyCartEmpty:       "Cart is empty",

		KeyOrderPlaced:        "Order placed successfully",
		KeyOrderNotFound:      "Order not found",
		KeyOrderStatusUpdated: "Order status updated",
		KeyOrderCancelled:     "Order cancelled",

		KeyPayoutRequested:     "Payout request submitted",
		KeyPayoutNothingToPay:  "No pending commissions to pay out",
		KeyCommissionsNotFound: "Commission transactions not found",

		KeyAdminAccessDenied: "Admin access required",
		KeyVendorRequired:    "Vendor account required",

		KeyWebhookInvalidSignature: "Invalid webhook signature",
		KeyWebhookProcessed:        "Webhook processed",
	}
}
