package scheduler

import (
	"container/heap"

	"github.com/avnodegraph/core/pkg/types"
)

// queueItem is the payload held at each position of an eventHeap. index
// is maintained by heap.Interface's Push/Pop/Swap so a specific item can
// later be located and removed by priority class during eviction.
type queueItem struct {
	event types.Event
	index int
}

// eventHeap is a container/heap priority queue ordered by (priority
// descending, sequence ascending): the highest-priority, oldest-enqueued
// item sorts first, so repeated heap.Pop calls drain a frame's batch in
// exactly the {Critical, High, Normal, Low} / FIFO-within-class order
// spec.md §4.5 requires without a separate per-class loop.
type eventHeap []*queueItem

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].event.Priority != h[j].event.Priority {
		return h[i].event.Priority > h[j].event.Priority
	}
	return h[i].event.Sequence() < h[j].event.Sequence()
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x interface{}) {
	item := x.(*queueItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// oldestOfPriority returns the index of the oldest (lowest-sequence)
// pending item at exactly priority, or -1 if none. Used by the
// backpressure eviction cascade, never by normal draining.
func (h eventHeap) oldestOfPriority(priority types.Priority) int {
	best := -1
	for i, item := range h {
		if item.event.Priority != priority {
			continue
		}
		if best == -1 || item.event.Sequence() < h[best].event.Sequence() {
			best = i
		}
	}
	return best
}

func popN(h *eventHeap, n int) []types.Event {
	out := make([]types.Event, 0, n)
	for i := 0; i < n && h.Len() > 0; i++ {
		item := heap.Pop(h).(*queueItem)
		out = append(out, item.event)
	}
	return out
}
