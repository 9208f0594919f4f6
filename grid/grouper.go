package grid

import "strconv"

// Bucket is one of the ten fixed rating categories
type Bucket string

// Buckets lists every rating label in ascending order
var Buckets = func() []Bucket {
	buckets := make([]Bucket, 10)
	for i := range buckets {
		buckets[i] = Bucket(strconv.Itoa(i + 1))
	}
	return buckets
}()

// Value returns the numeric value of the bucket, or 0 for an unknown label.
func (b Bucket) Value() int {
	n, err := strconv.Atoi(string(b))
	if err != nil || n < 1 || n > len(Buckets) {
		return 0
	}
	return n
}

// Valid reports whether the label is one of the known buckets.
func (b Bucket) Valid() bool {
	return b.Value() != 0 && string(b) == strconv.Itoa(b.Value())
}

// Grouped maps each bucket to its reviews, in input order
type Grouped map[Bucket][]Review

// Group partitions reviews by rating. All ten buckets are present in the
// result; reviews whose rating is not a known label are dropped.
func Group(reviews []Review) Grouped {
	groups := make(Grouped, len(Buckets))
	for _, b := range Buckets {
		groups[b] = []Review{}
	}
	for _, r := range reviews {
		b := Bucket(r.Rating)
		if !b.Valid() {
			continue
		}
		groups[b] = append(groups[b], r)
	}
	return groups
}

// Excluded returns the reviews Group would drop.
func Excluded(reviews []Review) []Review {
	var out []Review
	for _, r := range reviews {
		if !Bucket(r.Rating).Valid() {
			out = append(out, r)
		}
	}
	return out
}

// Total returns the number of grouped reviews.
func (g Grouped) Total() int {
	total := 0
	for _, b := range Buckets {
		total += len(g[b])
	}
	return total
}

// MaxCount is the size of the widest bucket plus one column for the row label.
func (g Grouped) MaxCount() int {
	longest := 0
	for _, b := range Buckets {
		if n := len(g[b]); n > longest {
			longest = n
		}
	}
	return longest + 1
}

// ComputeLayoutWidth returns the uniform cell width for a grid spanning unit.
func ComputeLayoutWidth(groups Grouped, unit float64) float64 {
	return unit / float64(groups.MaxCount())
}

// CellWidthPercent is ComputeLayoutWidth expressed as a percentage.
func CellWidthPercent(groups Grouped) float64 {
	return ComputeLayoutWidth(groups, 100)
}
