package bench

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the pause between scripted interactions.
const DefaultInterval = 100 * time.Millisecond

// Cycle returns an Interaction that runs actions round-robin, one every
// interval, until torn down. The first action runs one interval after start.
func Cycle(interval time.Duration, actions ...func()) Interaction {
	return func() (func(), error) {
		if len(actions) == 0 {
			return nil, errors.New("cycle: no actions")
		}
		if interval <= 0 {
			return nil, errors.New("cycle: interval must be positive")
		}

		limiter := rate.NewLimiter(rate.Every(interval), 1)
		limiter.Reserve() // spend the initial burst token

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; ; i++ {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				actions[i%len(actions)]()
			}
		}()

		return func() {
			cancel()
			<-done
		}, nil
	}
}
