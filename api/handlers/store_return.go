package handlers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/shopdash/api/responses"
	"github.com/angelmondragon/shopdash/pkg/logger"
)

// ReturnHandler processes the URL the Shopify install flow redirects back to.
type ReturnHandler interface {
	HandleReturn(ctx context.Context, returnURL string) (bool, error)
}

type storeReturnResponse struct {
	Connected bool `json:"connected"`
	Refreshed bool `json:"refreshed"`
}

// StoreReturn serves the OAuth return path. onReturn, when set, is told
// whether the connected marker was present once the store list settles.
func StoreReturn(stores ReturnHandler, logg *logger.Logger, onReturn func(connected bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		connected, err := stores.HandleReturn(ctx, r.URL.String())
		if err != nil && !connected {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err != nil && logg != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "store.return.refresh_failed")
		}

		if onReturn != nil {
			onReturn(connected)
		}
		responses.WriteSuccess(w, storeReturnResponse{
			Connected: connected,
			Refreshed: connected && err == nil,
		})
	}
}
