package http

import (
	"encoding/json"
	"net/http"

	"github.com/cs-expo/expograde/internal/group"
)

// GET /awards
// Ranks completed groups into the Best Presenter and Best Thesis top-3 lists.
// Zero completed groups yields empty lists, not an error.
func GetAwardsHandler(store group.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := store.ListGroups(r.Context(), group.ListOpts{Status: group.StatusCompleted})
		if err != nil {
			http.Error(w, "list groups: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(group.RankAwards(groups))
	}
}
