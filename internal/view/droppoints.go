package view

import (
	"sort"
	"strings"

	"pingplatform/internal/geo"
	"pingplatform/internal/models"
)

const CategoryNearby = "nearby"

type DropPointQuery struct {
	Text     string
	Category string
	// Position is nil when no location is available.
	Position       *geo.Position
	NearbyRadiusKm float64
}

// DropPoints filters drop points and, when a position is known, annotates
// and sorts them by distance. Without a position the "nearby" category
// excludes nothing and source order is kept.
func DropPoints(points []models.DropPoint, q DropPointQuery) Result[models.DropPoint] {
	annotated := make([]models.DropPoint, len(points))
	copy(annotated, points)
	if q.Position != nil {
		for i := range annotated {
			d := geo.CalculateDistance(q.Position.Latitude, q.Position.Longitude, annotated[i].Latitude, annotated[i].Longitude)
			annotated[i].Distance = &d
		}
	} else {
		for i := range annotated {
			annotated[i].Distance = nil
		}
	}

	radius := q.NearbyRadiusKm
	if radius <= 0 {
		radius = 2
	}
	var filters []Predicate[models.DropPoint]
	switch cat := strings.TrimSpace(q.Category); {
	case strings.EqualFold(cat, CategoryNearby):
		if q.Position != nil {
			filters = append(filters, func(dp models.DropPoint) bool {
				return dp.Distance != nil && *dp.Distance <= radius
			})
		}
	default:
		filters = append(filters, FieldEquals(func(dp models.DropPoint) string { return dp.Category }, cat))
	}

	res := Query[models.DropPoint]{
		Text:         q.Text,
		Fields:       func(dp models.DropPoint) []string { return []string{dp.Name, dp.Description, dp.Address} },
		Filters:      filters,
		EmptyMessage: "No drop points found. Try a different search or category.",
	}.Apply(annotated)
	if q.Position != nil {
		SortByDistance(res.Items)
	}
	return res
}

// SortByDistance orders by ascending distance in place. It is stable, so
// equal distances and points without a distance keep their relative order;
// points without a distance go last.
func SortByDistance(points []models.DropPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i].Distance, points[j].Distance
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
