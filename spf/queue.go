package spf

// queue is a FIFO backed by a growable ring buffer.
type queue[T any] struct {
	buf  []T
	head int
	n    int
}

func (q *queue[T]) Len() int {
	return q.n
}

func (q *queue[T]) Push(v T) {
	if q.n == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.n)%len(q.buf)] = v
	q.n++
}

// Pop removes and returns the oldest element.
func (q *queue[T]) Pop() (T, bool) {
	var zero T
	if q.n == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return v, true
}

func (q *queue[T]) grow() {
	buf := make([]T, max(2*len(q.buf), 4))
	for i := range q.n {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
