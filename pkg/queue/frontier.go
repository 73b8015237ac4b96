package queue

import (
	"container/heap"
	"sync"

	"github.com/sirupsen/logrus"

	"webcrawl/pkg/models"
)

// frontierItem wraps a frontier entry with its discovery sequence
// number, which doubles as the heap priority. Monotonic sequence
// numbers make the min-heap behave as a strict FIFO, so the crawl
// visits pages in breadth-first discovery order.
type frontierItem struct {
	entry *models.FrontierEntry
	seq   uint64
	index int
}

type frontierHeap []*frontierItem

func (h frontierHeap) Len() int { return len(h) }

func (h frontierHeap) Less(i, j int) bool {
	return h[i].seq < h[j].seq
}

func (h frontierHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *frontierHeap) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// Frontier is the thread-safe FIFO work queue of URLs awaiting a visit.
// Pop blocks while the frontier is empty until an entry arrives or the
// frontier is closed.
type Frontier struct {
	heap    frontierHeap
	mu      sync.Mutex
	cond    *sync.Cond
	nextSeq uint64
	closed  bool
	log     *logrus.Logger
}

// NewFrontier creates an empty open frontier.
func NewFrontier(log *logrus.Logger) *Frontier {
	f := &Frontier{log: log}
	f.cond = sync.NewCond(&f.mu)
	heap.Init(&f.heap)
	return f
}

// Add appends an entry to the frontier and reports whether it was
// accepted. Adds after Close are dropped; callers tracking outstanding
// work must release their count when Add returns false.
func (f *Frontier) Add(entry *models.FrontierEntry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		f.log.Warnf("Dropping frontier add after close: %s", entry.URL)
		return false
	}

	heap.Push(&f.heap, &frontierItem{entry: entry, seq: f.nextSeq})
	f.nextSeq++
	f.cond.Signal()
	return true
}

// Pop removes and returns the oldest entry. It blocks while the
// frontier is empty; a (nil, false) return means the frontier is closed
// and drained, and the worker should exit.
func (f *Frontier) Pop() (*models.FrontierEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.heap) == 0 {
		if f.closed {
			return nil, false
		}
		f.cond.Wait()
	}

	item := heap.Pop(&f.heap).(*frontierItem)
	return item.entry, true
}

// Close marks the frontier complete and wakes all blocked workers.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		f.cond.Broadcast()
	}
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.heap)
}
