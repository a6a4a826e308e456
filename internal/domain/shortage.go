package domain

import (
	"encoding/json"
	"math"
	"sort"
)

// ─── Severity Policy ────────────────────────────────────────────────────────
// These thresholds are policy constants. Statistics and allocation priority
// both depend on them staying identical, so they live here and nowhere else.
//
// A shortage is Critical when needed exceeds double the available quantity
// (or nothing is available at all), High when it exceeds 1.5×, Normal
// otherwise. Comparisons are integer-exact: needed > 2·available and
// 2·needed > 3·available, so the 1.5× boundary itself is Normal.

// Severity classifies how urgent a shortage is.
type Severity string

const (
	SeverityNormal   Severity = "Normal"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

const (
	// CriticalMultiplierNum/Den: Critical when needed > 2 × available.
	CriticalMultiplierNum = 2
	CriticalMultiplierDen = 1

	// HighMultiplierNum/Den: High when needed > 3/2 × available.
	HighMultiplierNum = 3
	HighMultiplierDen = 2
)

// ClassifySeverity is a pure function of available and needed quantities.
// available == 0 with needed > 0 is always Critical.
func ClassifySeverity(available, needed int64) Severity {
	if available == 0 && needed > 0 {
		return SeverityCritical
	}
	if needed*CriticalMultiplierDen > available*CriticalMultiplierNum {
		return SeverityCritical
	}
	if needed*HighMultiplierDen > available*HighMultiplierNum {
		return SeverityHigh
	}
	return SeverityNormal
}

// ─── Shortage Ratio ─────────────────────────────────────────────────────────

// Ratio is needed/available with an explicit unbounded tag for the
// available == 0 case. A raw floating-point infinity never appears: it does
// not survive JSON encoding and the two report surfaces must agree on one
// representation.
type Ratio struct {
	Value     float64
	Unbounded bool
}

// ShortageRatio computes the needed/available ratio, rounded to two decimals.
func ShortageRatio(available, needed int64) Ratio {
	if available == 0 {
		return Ratio{Unbounded: true}
	}
	v := float64(needed) / float64(available)
	return Ratio{Value: math.Round(v*100) / 100}
}

// MarshalJSON encodes a bounded ratio as {"value":N} and an unbounded one as
// {"unbounded":true}.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.Unbounded {
		return json.Marshal(struct {
			Unbounded bool `json:"unbounded"`
		}{true})
	}
	return json.Marshal(struct {
		Value float64 `json:"value"`
	}{r.Value})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value     float64 `json:"value"`
		Unbounded bool    `json:"unbounded"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Value = raw.Value
	r.Unbounded = raw.Unbounded
	return nil
}

// ─── Shortage Views ─────────────────────────────────────────────────────────

// ShortageView is a derived, never-persisted report row: one Resource whose
// needed quantity exceeds its available quantity.
type ShortageView struct {
	Resource
	Amount   int64    `json:"shortage_amount"`
	Severity Severity `json:"shortage_severity"`
	Ratio    Ratio    `json:"shortage_ratio"`
}

// NewShortageView builds a ShortageView from an under-supplied Resource.
func NewShortageView(r Resource) ShortageView {
	return ShortageView{
		Resource: r,
		Amount:   r.Needed - r.Available,
		Severity: ClassifySeverity(r.Available, r.Needed),
		Ratio:    ShortageRatio(r.Available, r.Needed),
	}
}

// SortByNeed orders shortages descending by shortage amount, ties broken by
// camp ID ascending so identical snapshots always produce identical output.
func SortByNeed(views []ShortageView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Amount != views[j].Amount {
			return views[i].Amount > views[j].Amount
		}
		return views[i].CampID < views[j].CampID
	})
}
