package analytics

// orderedCounter counts keys and remembers first-insertion order, so "most
// active" ties resolve to whichever key was seen first.
type orderedCounter struct {
	keys   []string
	counts map[string]int
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

func (c *orderedCounter) inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

// max returns the first-inserted key holding the highest count.
func (c *orderedCounter) max() (string, int) {
	var bestKey string
	bestCount := 0
	for _, key := range c.keys {
		if count := c.counts[key]; count > bestCount {
			bestKey, bestCount = key, count
		}
	}
	return bestKey, bestCount
}

func (c *orderedCounter) each(fn func(key string, count int)) {
	for _, key := range c.keys {
		fn(key, c.counts[key])
	}
}
