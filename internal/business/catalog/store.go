package catalog

import (
	"net/url"
	"strings"

	"github.com/artxeweb/comparaelprecio-api/pkg/model"
)

// DetectStore maps a product URL to its store by substring match on the
// lowercased hostname. It is pure and total: unparseable input and unknown
// hosts classify as StoreUnknown, never an error.
func DetectStore(rawURL string) model.Store {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return model.StoreUnknown
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "amazon"):
		return model.StoreAmazon
	case strings.Contains(host, "carrefour"):
		return model.StoreCarrefour
	case strings.Contains(host, "mediamarkt"):
		return model.StoreMediaMarkt
	default:
		return model.StoreUnknown
	}
}

// Badge presentation per store. Pure configuration data consulted by the
// rendering layer, not logic.
var storeConfigs = map[model.Store]model.StoreConfig{
	model.StoreAmazon: {
		Name:        "Amazon",
		Color:       "amber",
		BgClass:     "bg-amber-100",
		TextClass:   "text-amber-800",
		BorderClass: "border-amber-200",
	},
	model.StoreCarrefour: {
		Name:        "Carrefour",
		Color:       "blue",
		BgClass:     "bg-blue-100",
		TextClass:   "text-blue-800",
		BorderClass: "border-blue-200",
	},
	model.StoreMediaMarkt: {
		Name:        "MediaMarkt",
		Color:       "red",
		BgClass:     "bg-red-100",
		TextClass:   "text-red-800",
		BorderClass: "border-red-200",
	},
	model.StoreUnknown: {
		Name:        "Tienda",
		Color:       "gray",
		BgClass:     "bg-gray-100",
		TextClass:   "text-gray-800",
		BorderClass: "border-gray-200",
	},
}

// StoreConfigFor returns the badge config for a store, falling back to the
// generic badge for anything unrecognized.
func StoreConfigFor(store model.Store) model.StoreConfig {
	if cfg, ok := storeConfigs[store]; ok {
		return cfg
	}
	return storeConfigs[model.StoreUnknown]
}
