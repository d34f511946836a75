package list

import (
	"fmt"
	"strings"
)

// Note that the sequential list is not thread safe.
// It is a singly linked list keeping both the head and the tail,
// so the tail insertion is O(1) without a walk.

type InsertPolicy uint8

const (
	// InsertAtTail links the new node after the tracked tail.
	InsertAtTail InsertPolicy = iota
	// InsertAtHead links the new node before the head.
	InsertAtHead
	// InsertAtTailByWalk walks from the head to locate the tail, O(n).
	// Only kept to compare against the tail-tracked version.
	InsertAtTailByWalk
	_insertPolicyMax
)

func (p InsertPolicy) String() string {
	switch p {
	case InsertAtTail:
		return "tail"
	case InsertAtHead:
		return "head"
	case InsertAtTailByWalk:
		return "tail-walk"
	default:
	}
	return "unknown"
}

func (p InsertPolicy) Valid() bool {
	return p < _insertPolicyMax
}

func ParseInsertPolicy(policy string) (InsertPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", "tail":
		return InsertAtTail, nil
	case "head":
		return InsertAtHead, nil
	case "tail-walk", "walk":
		return InsertAtTailByWalk, nil
	default:
	}
	return _insertPolicyMax, fmt.Errorf("[list] unknown insert policy %q", policy)
}

type seqListNode[K comparable, V any] struct {
	next *seqListNode[K, V]
	key  K
	val  V
}

type SeqList[K comparable, V any] struct {
	head        *seqListNode[K, V]
	tail        *seqListNode[K, V]
	len         int64
	policy      InsertPolicy
	trustedKeys bool
}

func (l *SeqList[K, V]) Len() int64 {
	return l.len
}

func (l *SeqList[K, V]) Policy() InsertPolicy {
	return l.policy
}

// Insert is an upsert. The existing key's value is overwritten in place
// and its position is kept.
// If the keys are trusted to be unique, the lookup is skipped.
func (l *SeqList[K, V]) Insert(key K, val V) error {
	if !l.trustedKeys {
		if node := l.search(key); node != nil {
			node.val = val
			return nil
		}
	}

	node := &seqListNode[K, V]{key: key, val: val}
	switch {
	case l.head == nil:
		l.head, l.tail = node, node
	case l.policy == InsertAtHead:
		node.next = l.head
		l.head = node
	case l.policy == InsertAtTailByWalk:
		aux := l.head
		for ; aux.next != nil; aux = aux.next {
		}
		aux.next = node
		l.tail = node
	default:
		l.tail.next = node
		l.tail = node
	}
	l.len++
	return nil
}

func (l *SeqList[K, V]) search(key K) *seqListNode[K, V] {
	for aux := l.head; aux != nil; aux = aux.next {
		if aux.key == key {
			return aux
		}
	}
	return nil
}

// FindByKey scans from the front and returns the first matched value.
func (l *SeqList[K, V]) FindByKey(key K) (val V, ok bool) {
	if node := l.search(key); node != nil {
		return node.val, true
	}
	return val, false
}

// RemoveByKey unlinks the first matched node.
func (l *SeqList[K, V]) RemoveByKey(key K) bool {
	var prev *seqListNode[K, V]
	for aux := l.head; aux != nil; prev, aux = aux, aux.next {
		if aux.key != key {
			continue
		}
		if prev == nil {
			l.head = aux.next
		} else {
			prev.next = aux.next
		}
		if aux == l.tail {
			l.tail = prev
		}
		aux.next = nil
		l.len--
		return true
	}
	return false
}

func (l *SeqList[K, V]) Find(key K) (V, bool) {
	return l.FindByKey(key)
}

func (l *SeqList[K, V]) Remove(key K) bool {
	return l.RemoveByKey(key)
}

// Front returns the head entry.
func (l *SeqList[K, V]) Front() (key K, val V, ok bool) {
	if l.head == nil {
		return key, val, false
	}
	return l.head.key, l.head.val, true
}

// Foreach iterates in the list order until the action returns false.
func (l *SeqList[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	idx := int64(0)
	for aux := l.head; aux != nil; aux = aux.next {
		if !action(idx, aux.key, aux.val) {
			return
		}
		idx++
	}
}

// Clear unlinks every node, each of them is visited once.
func (l *SeqList[K, V]) Clear() {
	for aux := l.head; aux != nil; {
		next := aux.next
		aux.next = nil
		aux = next
	}
	l.head, l.tail = nil, nil
	l.len = 0
}

type SeqListOption[K comparable, V any] func(l *SeqList[K, V])

func WithSeqListPolicy[K comparable, V any](policy InsertPolicy) SeqListOption[K, V] {
	return func(l *SeqList[K, V]) {
		if !policy.Valid() {
			panic( /* debug assertion */ "[seq-list] unknown insert policy")
		}
		l.policy = policy
	}
}

// WithSeqListTrustedKeys disables the duplicate key lookup on insert.
// The caller promises that a key is never inserted twice.
func WithSeqListTrustedKeys[K comparable, V any]() SeqListOption[K, V] {
	return func(l *SeqList[K, V]) {
		l.trustedKeys = true
	}
}

func NewSeqList[K comparable, V any](opts ...SeqListOption[K, V]) *SeqList[K, V] {
	l := &SeqList[K, V]{
		policy: InsertAtTail,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}
