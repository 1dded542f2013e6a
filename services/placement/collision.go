package placement

import "eosthanks/models"

// Overlaps reports whether two rectangles intersect. Edges that touch count
// as overlapping.
func Overlaps(a, b models.Rect) bool {
	return !(a.Right() < b.Left ||
		a.Left > b.Right() ||
		a.Bottom() < b.Top ||
		a.Top > b.Bottom())
}

// HasCollision reports whether candidate overlaps any of the obstacles.
func HasCollision(candidate models.Rect, obstacles []models.Rect) bool {
	for _, o := range obstacles {
		if Overlaps(candidate, o) {
			return true
		}
	}
	return false
}
