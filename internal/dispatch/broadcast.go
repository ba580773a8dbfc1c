package dispatch

import (
	"context"
	"sync"
)

// Broadcast dispatches the same prompt to several rooms concurrently and
// tallies the outcome. An empty room list means every registered room. One
// room failing never short-circuits the others.
func (d *Dispatcher) Broadcast(ctx context.Context, text string, roomIDs []string, priority int) BroadcastResult {
	if len(roomIDs) == 0 {
		roomIDs = d.registry.IDs()
	}
	result := BroadcastResult{Targets: roomIDs}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, id := range roomIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			receipt := d.Dispatch(ctx, id, text, priority)
			mu.Lock()
			if receipt.Success {
				result.Succeeded++
			} else {
				result.Failed++
			}
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return result
}
