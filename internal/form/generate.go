package form

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Generator produces unique valid values for one suite run. It is safe for
// concurrent use; values never repeat within a generator's lifetime.
type Generator struct {
	mu         sync.Mutex
	now        func() time.Time
	rnd        *rand.Rand
	lastMillis int64
	names      map[string]struct{}
}

// NewGenerator creates a generator seeded from the clock
func NewGenerator() *Generator {
	return newGenerator(time.Now, time.Now().UnixNano())
}

func newGenerator(now func() time.Time, seed int64) *Generator {
	return &Generator{
		now:   now,
		rnd:   rand.New(rand.NewSource(seed)),
		names: make(map[string]struct{}),
	}
}

// Email returns test_<unix-ms>@test.com. Calls within the same millisecond
// bump the timestamp so two emails never collide.
func (g *Generator) Email() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.lastMillis {
		ms = g.lastMillis + 1
	}
	g.lastMillis = ms

	return fmt.Sprintf("test_%d@test.com", ms)
}

// nameDraws bounds the redraws at one suffix length before the suffix grows
const nameDraws = 64

// Name returns "Tester " followed by n random letters. When the draws at n
// letters keep colliding with earlier names the suffix grows by one letter,
// so every call returns after a bounded number of draws.
func (g *Generator) Name(n int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n <= 0 {
		return "Tester "
	}
	for length := n; ; length++ {
		for draw := 0; draw < nameDraws; draw++ {
			var sb strings.Builder
			sb.WriteString("Tester ")
			for i := 0; i < length; i++ {
				sb.WriteByte(letters[g.rnd.Intn(len(letters))])
			}
			name := sb.String()
			if _, seen := g.names[name]; seen {
				continue
			}
			g.names[name] = struct{}{}
			return name
		}
	}
}

// EmailSource wraps Email as a ValueSource
func (g *Generator) EmailSource() ValueSource {
	return GeneratorFunc(g.Email)
}

// NameSource wraps Name(n) as a ValueSource
func (g *Generator) NameSource(n int) ValueSource {
	return GeneratorFunc(func() string { return g.Name(n) })
}
