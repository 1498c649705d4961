package model

import "sort"

// Fits reports whether an item with outer dimensions item can be placed inside a box
// with inner dimensions box. The item may be rotated freely, so both triples are sorted
// and compared side by side. Items touching the walls exactly still fit.
func Fits(item, box Dimensions) bool {
	if !item.Valid() || !box.Valid() {
		return false
	}
	a := sortedSides(item)
	b := sortedSides(box)
	for i := range a {
		if a[i] > b[i] {
			return false
		}
	}
	return true
}

func sortedSides(d Dimensions) [3]float64 {
	s := []float64{d.Width, d.Height, d.Depth}
	sort.Float64s(s)
	return [3]float64{s[0], s[1], s[2]}
}
