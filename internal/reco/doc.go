// Package reco holds the catalog recommendation rules: the smoothed
// engagement score, the listing selection precedence and the UTC calendar
// windows both of them are evaluated in.
//
// Everything here is pure. Stores compute the counts and id-sets and pass
// them in. A SelectionPlan only resolves which ids are in or out; the store
// that runs it owns the online filter and the ordering.
package reco
