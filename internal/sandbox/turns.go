package sandbox

import (
	"container/heap"

	"agent-bridge/internal/core/types"
)

// turnItem - участник боя в очереди ходов.
type turnItem struct {
	id       types.EntityID
	priority int // меньше - раньше
	seq      int // порядок добавления при равном приоритете
	index    int
}

// turnQueue реализует heap.Interface.
type turnQueue []*turnItem

func (q turnQueue) Len() int { return len(q) }

func (q turnQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q turnQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *turnQueue) Push(x any) {
	item := x.(*turnItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *turnQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// turnOrder - кто ходит следующим в текущем раунде. Раунд заполняется
// заново, когда очередь пустеет.
type turnOrder struct {
	queue turnQueue
	items map[types.EntityID]*turnItem
	seq   int
}

func newTurnOrder() *turnOrder {
	return &turnOrder{items: make(map[types.EntityID]*turnItem)}
}

// Add ставит участника в раунд. Повторное добавление меняет приоритет.
func (o *turnOrder) Add(id types.EntityID, priority int) {
	if item, ok := o.items[id]; ok {
		item.priority = priority
		heap.Fix(&o.queue, item.index)
		return
	}
	o.seq++
	item := &turnItem{id: id, priority: priority, seq: o.seq}
	heap.Push(&o.queue, item)
	o.items[id] = item
}

// Next снимает участника с наименьшим приоритетом.
func (o *turnOrder) Next() (types.EntityID, bool) {
	if o.queue.Len() == 0 {
		return types.NilEntityID, false
	}
	item := heap.Pop(&o.queue).(*turnItem)
	delete(o.items, item.id)
	return item.id, true
}

// Remove - участник выбыл (смерть, бегство).
func (o *turnOrder) Remove(id types.EntityID) {
	if item, ok := o.items[id]; ok {
		heap.Remove(&o.queue, item.index)
		delete(o.items, id)
	}
}

func (o *turnOrder) Len() int { return o.queue.Len() }
