package journeygraph

import "container/heap"

type queueItem struct {
	stopID   string
	duration int

	// sequence breaks duration ties in insertion order
	sequence int
}

type durationQueue struct {
	items []queueItem
	next  int
}

func (q *durationQueue) Len() int { return len(q.items) }

func (q *durationQueue) Less(i, j int) bool {
	if q.items[i].duration != q.items[j].duration {
		return q.items[i].duration < q.items[j].duration
	}
	return q.items[i].sequence < q.items[j].sequence
}

func (q *durationQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *durationQueue) Push(x any) {
	q.items = append(q.items, x.(queueItem))
}

func (q *durationQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}

func (q *durationQueue) push(stopID string, duration int) {
	heap.Push(q, queueItem{stopID: stopID, duration: duration, sequence: q.next})
	q.next++
}

func (q *durationQueue) pop() queueItem {
	return heap.Pop(q).(queueItem)
}
