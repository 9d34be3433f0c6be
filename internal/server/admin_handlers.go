package server

import (
	"log"
	"net/http"
)

// HandleCacheRefresh handles POST /admin/cache/refresh
// Manually triggers a refresh of the group→role cache
func HandleCacheRefresh(admin adminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := admin.RefreshCache(r.Context()); err != nil {
			log.Printf("ERROR: Manual cache refresh failed: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "cache refresh failed")
			return
		}

		snapshot := admin.CacheSnapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "success",
			"version":   snapshot.Version,
			"groups":    len(snapshot.Mappings),
			"timestamp": snapshot.CreatedAt.Unix(),
		})

		log.Printf("INFO: Manual cache refresh triggered (version=%d, groups=%d)",
			snapshot.Version, len(snapshot.Mappings))
	}
}
