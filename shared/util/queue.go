package util

// UniqueQueue é uma fila de itens únicos por chave, sem ordem de chegada:
// a retirada escolhe sempre o item de menor pontuação.
// Não é thread-safe; quem usa protege com o próprio lock.
type UniqueQueue[K comparable, V any] struct {
	items map[K]V
}

// NewUniqueQueue cria uma nova UniqueQueue.
func NewUniqueQueue[K comparable, V any]() *UniqueQueue[K, V] {
	return &UniqueQueue[K, V]{
		items: make(map[K]V),
	}
}

// Enqueue adiciona um item se a chave ainda não existir na fila.
// Retorna false (sem alterar nada) se a chave já estava presente.
func (q *UniqueQueue[K, V]) Enqueue(key K, value V) bool {
	if _, ok := q.items[key]; ok {
		return false
	}
	q.items[key] = value
	return true
}

// Remove tira uma chave da fila.
func (q *UniqueQueue[K, V]) Remove(key K) bool {
	if _, ok := q.items[key]; !ok {
		return false
	}
	delete(q.items, key)
	return true
}

// Contains verifica se uma chave está na fila.
func (q *UniqueQueue[K, V]) Contains(key K) bool {
	_, ok := q.items[key]
	return ok
}

// Len retorna o número de items na fila.
func (q *UniqueQueue[K, V]) Len() int {
	return len(q.items)
}

// Best retorna, sem remover, a chave de menor score.
// Empates são resolvidos por less para que a escolha seja reproduzível.
func (q *UniqueQueue[K, V]) Best(score func(K) int64, less func(a, b K) bool) (K, int64, bool) {
	var bestKey K
	var bestScore int64
	found := false
	for k := range q.items {
		s := score(k)
		if !found || s < bestScore || (s == bestScore && less(k, bestKey)) {
			bestKey, bestScore, found = k, s, true
		}
	}
	return bestKey, bestScore, found
}

// Pop remove e retorna o item da chave informada.
func (q *UniqueQueue[K, V]) Pop(key K) (V, bool) {
	v, ok := q.items[key]
	if ok {
		delete(q.items, key)
	}
	return v, ok
}

// RemoveIf remove todos os itens para os quais drop retorna true
// e devolve as chaves removidas.
func (q *UniqueQueue[K, V]) RemoveIf(drop func(K, V) bool) []K {
	var removed []K
	for k, v := range q.items {
		if drop(k, v) {
			removed = append(removed, k)
		}
	}
	for _, k := range removed {
		delete(q.items, k)
	}
	return removed
}

// Clear limpa a fila.
func (q *UniqueQueue[K, V]) Clear() {
	q.items = make(map[K]V)
}
