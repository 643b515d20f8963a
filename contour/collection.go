package contour

import (
	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

// Collection is an unordered set of contours sharing a logical identity
// (one ROI).
type Collection struct {
	Contours []*Contour
}

// NewCollection wraps contours into a Collection.
func NewCollection(contours ...*Contour) *Collection {
	return &Collection{Contours: contours}
}

// Data is an ordered list of contour collections.
type Data struct {
	Collections []*Collection
}

// NewData wraps collections into a Data list.
func NewData(collections ...*Collection) *Data {
	return &Data{Collections: collections}
}

// TotalArea sums the unsigned area of every contour in the collection.
func (cc *Collection) TotalArea() (float64, error) {
	var total float64
	for _, c := range cc.Contours {
		a, err := c.Area()
		if err != nil {
			return 0, err
		}
		total += a
	}
	return total, nil
}

// DeepCopy duplicates every contour's point slice and metadata map.
func (cc *Collection) DeepCopy() *Collection {
	out := &Collection{Contours: make([]*Contour, len(cc.Contours))}
	for i, c := range cc.Contours {
		out.Contours[i] = NewContour(c.Points, c.Closed, c.Metadata)
	}
	return out
}

// RepresentativeNormal returns the first contour's average normal, used as
// the common reference normal orientation comparisons across the
// collection are measured against (spec §8 scenario 4: two contours can
// only disagree on winding relative to a shared normal, never relative to
// their own, individually-computed averages).
func (cc *Collection) RepresentativeNormal() (geom.Vector3, error) {
	if len(cc.Contours) == 0 {
		return geom.Vector3{}, errs.ErrEmptyCollection
	}
	return cc.Contours[0].AverageNormal()
}

// Metadata returns the value of key as found on the first contour that
// carries it, mirroring the common pattern of ROI-level metadata stamped
// onto every member contour.
func (cc *Collection) Metadata(key string) (string, bool) {
	for _, c := range cc.Contours {
		if v, ok := c.Metadata[key]; ok {
			return v, true
		}
	}
	return "", false
}
