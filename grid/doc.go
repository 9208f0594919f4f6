// Package grid groups diary reviews into the ten rating buckets and computes
// the layout of the poster grid drawn from them.
//
// Every row of the grid shares one column width, derived from the widest
// bucket plus a column for the row label, so posters line up vertically.
package grid
