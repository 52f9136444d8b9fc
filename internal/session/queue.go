package session

import "github.com/hilthontt/burnbox/internal/domain"

// queue is an arrival-ordered waiting list.
type queue struct {
	entries []domain.ConnID
}

func (q *queue) push(id domain.ConnID) {
	q.entries = append(q.entries, id)
}

// pushFront returns an entry to the head after a failed pairing.
func (q *queue) pushFront(id domain.ConnID) {
	q.entries = append([]domain.ConnID{id}, q.entries...)
}

func (q *queue) pop() (domain.ConnID, bool) {
	if len(q.entries) == 0 {
		return "", false
	}
	id := q.entries[0]
	q.entries[0] = ""
	q.entries = q.entries[1:]
	return id, true
}

func (q *queue) remove(id domain.ConnID) bool {
	for i, entry := range q.entries {
		if entry == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (q *queue) contains(id domain.ConnID) bool {
	for _, entry := range q.entries {
		if entry == id {
			return true
		}
	}
	return false
}

func (q *queue) len() int {
	return len(q.entries)
}

func (q *queue) snapshot() []domain.ConnID {
	out := make([]domain.ConnID, len(q.entries))
	copy(out, q.entries)
	return out
}
