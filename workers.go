package boidswarm

import "sync"

// forEachGroup calls fn on every non-empty group.
// Groups of a partition are disjoint so they are processed concurrently
// when Workers > 1. It returns once every call has returned.
func (s *Swarm) forEachGroup(groups [][]int, fn func(group []int)) {
	if s.Workers < 2 {
		for _, g := range groups {
			if len(g) > 0 {
				fn(g)
			}
		}
		return
	}

	jobs := make(chan []int, len(groups))
	for _, g := range groups {
		if len(g) > 0 {
			jobs <- g
		}
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < s.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range jobs {
				fn(g)
			}
		}()
	}
	wg.Wait()
}

// forEachRange calls fn on contiguous ranges [lo, hi) covering all agents,
// one range per worker. It returns once every call has returned.
func (s *Swarm) forEachRange(fn func(lo, hi int)) {
	n := len(s.Agents)
	w := s.Workers
	if w > n {
		w = n
	}
	if w < 2 {
		fn(0, n)
		return
	}

	chunk := (n + w - 1) / w
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
