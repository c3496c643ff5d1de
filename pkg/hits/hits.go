// Package hits collects search hits from any number of queries. Only the
// best scoring hit for each subject identifier is kept. When collection
// is over, a random sample of the survivors is drawn.
package hits

import (
	"math/rand"
	"strings"

	. "github.com/andrew-torda/homologs/pkg/seq/common"
)

// DefaultCap is how many hits are sampled unless told otherwise.
const DefaultCap = 50

// Hit is one subject sequence found by a search.
type Hit struct {
	ID    string  // subject identifier
	Score float64 // bit score of its best alignment
	Seq   string  // aligned part of the subject
}

// Outcome says what Add did with a hit.
type Outcome int

const (
	Inserted  Outcome = iota // identifier not seen before
	Replaced                 // seen, but with a lower score
	Discarded                // seen with the same or a better score
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	}
	return "discarded"
}

// Collector holds at most one hit per identifier, in the order they were
// added. A replaced hit moves to the end.
type Collector struct {
	ndx  map[string]int // identifier -> position in hits
	hits []Hit
}

// NewCollector gives an empty collector.
func NewCollector() *Collector {
	return &Collector{ndx: make(map[string]int)}
}

// Normalize cleans up a subject sequence before we keep it. Only the
// first gap is removed and only the first U becomes X. Any later ones
// are left alone; the aligner copes with them.
func Normalize(raw string) string {
	s := strings.Replace(raw, string(GapChar), "", 1)
	return strings.Replace(s, string(SelenoRes), string(UnknownRes), 1)
}

// removeAt deletes position m, keeping the order of everything else.
func (c *Collector) removeAt(m int) {
	delete(c.ndx, c.hits[m].ID)
	c.hits = append(c.hits[:m], c.hits[m+1:]...)
	for k := m; k < len(c.hits); k++ {
		c.ndx[c.hits[k].ID] = k
	}
}

// Add offers a hit to the collection. If the identifier is new, the hit
// goes in. If the identifier is known with a strictly lower score, the
// old one is thrown out. Otherwise the new hit is dropped.
// The sequence is normalised on the way in.
func (c *Collector) Add(h Hit) Outcome {
	outcome := Inserted
	if known, ok := c.ndx[h.ID]; ok {
		if c.hits[known].Score >= h.Score {
			return Discarded
		}
		c.removeAt(known)
		outcome = Replaced
	}
	h.Seq = Normalize(h.Seq)
	c.ndx[h.ID] = len(c.hits)
	c.hits = append(c.hits, h)
	return outcome
}

// Len is the number of distinct identifiers held.
func (c *Collector) Len() int { return len(c.hits) }

// Get returns the hit kept for an identifier.
func (c *Collector) Get(id string) (Hit, bool) {
	if k, ok := c.ndx[id]; ok {
		return c.hits[k], true
	}
	return Hit{}, false
}

// Hits returns a copy of what is held, in collection order.
func (c *Collector) Hits() []Hit {
	return append([]Hit(nil), c.hits...)
}

// Sample draws hits at random, without replacement, until the pool is
// empty or limit have been drawn. Drawn hits leave the collector.
// The caller seeds rnd, so a run can be repeated.
func (c *Collector) Sample(rnd *rand.Rand, limit int) []Hit {
	var out []Hit
	for len(c.hits) > 0 && len(out) < limit {
		m := rnd.Intn(len(c.hits))
		out = append(out, c.hits[m])
		c.removeAt(m)
	}
	return out
}
