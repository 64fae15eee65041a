package riemann

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"golang.org/x/time/rate"
)

// Cooldown limits each user to n invocations per window. Exceeding the
// limit fails the check with CommandOnCooldownError carrying the wait
// time.
func Cooldown(n int, window time.Duration) Check {
	c := &cooldown{
		limit:    rate.Every(window / time.Duration(n)),
		burst:    n,
		limiters: make(map[string]*rate.Limiter),
	}
	return c.check
}

type cooldown struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func (c *cooldown) check(_ *Bot, ic *discordgo.InteractionCreate) error {
	key := ""
	if user := InteractionUser(ic); user != nil {
		key = user.ID
	}

	c.mu.Lock()
	limiter, ok := c.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(c.limit, c.burst)
		c.limiters[key] = limiter
	}
	c.mu.Unlock()

	reservation := limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return &CommandOnCooldownError{RetryAfter: delay}
	}
	return nil
}
