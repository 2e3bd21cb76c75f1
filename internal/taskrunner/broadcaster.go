package taskrunner

import "sync"

// ProgressEvent is one pipeline progress update pushed to subscribers.
type ProgressEvent struct {
	TaskID  string `json:"task_id"`
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
}

// Broadcaster fans progress events out to per-task subscribers. Slow
// subscribers drop events rather than block the pipeline.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string][]chan ProgressEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[string][]chan ProgressEvent{}}
}

// Subscribe registers for one task's events. The returned cancel func must be
// called to release the channel.
func (b *Broadcaster) Subscribe(taskID string) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 16)

	b.mu.Lock()
	b.subs[taskID] = append(b.subs[taskID], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		channels := b.subs[taskID]
		for i, sub := range channels {
			if sub == ch {
				b.subs[taskID] = append(channels[:i], channels[i+1:]...)
				close(ch)
				break
			}
		}
		if len(b.subs[taskID]) == 0 {
			delete(b.subs, taskID)
		}
	}
	return ch, cancel
}

func (b *Broadcaster) Publish(event ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[event.TaskID] {
		select {
		case ch <- event:
		default:
		}
	}
}
