package tenants

import "github.com/angelmondragon/shopdash/internal/models"

// Newest picks the tenant with the latest CreatedAt; on ties the later list
// entry wins. Without any timestamps it falls back to the last entry, the
// order the backend returns them in. list must not be empty.
func Newest(list []models.Tenant) models.Tenant {
	best := -1
	for i, t := range list {
		if t.CreatedAt == nil {
			continue
		}
		if best < 0 || !t.CreatedAt.Before(*list[best].CreatedAt) {
			best = i
		}
	}
	if best < 0 {
		return list[len(list)-1]
	}
	return list[best]
}
