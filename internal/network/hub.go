package network

import (
	"sync"
)

// FrameBuffer - сколько кадров ждёт в канале подписчика, прежде чем
// новые начнут теряться.
const FrameBuffer = 16

// Broadcaster рассылает закодированные кадры состояния подписчикам монитора.
// Публикация никогда не блокирует: медленный подписчик теряет кадры.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: id подписчика -> личный канал
	subscribers map[string]chan []byte
	last        []byte
	dropped     int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan []byte),
	}
}

// Register создает личный канал подписчика. Если последний кадр уже есть,
// он сразу лежит в канале: опоздавший зритель не ждёт следующего тика.
func (b *Broadcaster) Register(id string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[id]; ok {
		close(old)
	}

	ch := make(chan []byte, FrameBuffer)
	if b.last != nil {
		ch <- b.last
	}
	b.subscribers[id] = ch
	return ch
}

// Release удаляет подписчика, только если канал всё ещё его. Старое
// соединение, закрывшееся после переподключения, не снимает новое.
func (b *Broadcaster) Release(id string, ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.subscribers[id]; ok && cur == ch {
		close(cur)
		delete(b.subscribers, id)
	}
}

// Publish запоминает кадр и отправляет его всем. Кадр не копируется,
// вызывающий не должен его менять.
func (b *Broadcaster) Publish(frame []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = frame
	for _, ch := range b.subscribers {
		select {
		case ch <- frame:
		default:
			b.dropped++
		}
	}
}

// Last - последний опубликованный кадр или nil.
func (b *Broadcaster) Last() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

func (b *Broadcaster) HasSubscriber(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[id]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped - сколько кадров не влезло в каналы подписчиков.
func (b *Broadcaster) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}
