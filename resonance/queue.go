package resonance

// queue is a bounded heap that keeps the best results seen so far. The top
// is the worst kept result, so a better candidate replaces it in O(log k).
type queue struct {
	capacity int
	items    []Result
}

func newQueue(capacity int) *queue {
	return &queue{capacity: capacity, items: make([]Result, 0, min(capacity, 64))}
}

// worse reports whether item i ranks below item j.
func (q *queue) worse(i, j int) bool {
	return compare(q.items[i], q.items[j]) > 0
}

func (q *queue) pushBounded(r Result) {
	if len(q.items) < q.capacity {
		q.items = append(q.items, r)
		q.siftUp(len(q.items) - 1)
		return
	}
	// Heap is full: replace the top if r ranks above it.
	if compare(r, q.items[0]) < 0 {
		q.items[0] = r
		q.siftDown(0)
	}
}

func (q *queue) pop() (Result, bool) {
	n := len(q.items)
	if n == 0 {
		return Result{}, false
	}
	top := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return top, true
}

// drain empties the queue and returns its items best first.
func (q *queue) drain() []Result {
	out := make([]Result, len(q.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i], _ = q.pop()
	}
	return out
}

func (q *queue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.worse(i, parent) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *queue) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && q.worse(right, left) {
			child = right
		}
		if !q.worse(child, i) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}
