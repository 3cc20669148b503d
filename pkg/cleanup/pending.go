// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cleanup

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Handle tracks one scheduled delete
type Handle struct {
	Key  string
	done chan struct{}
	err  error
}

func newHandle(key string) *Handle {
	return &Handle{Key: key, done: make(chan struct{})}
}

func (h *Handle) finish(err error) {
	h.err = err
	close(h.done)
}

// Done is closed once the delete has finished
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err is the delete's result. Only valid after Done is closed.
func (h *Handle) Err() error {
	return h.err
}

// 🧹 Pending is the process-wide set of in-flight deletes. It is safe for
// concurrent use and may receive new handles while it is being drained.
type Pending struct {
	mu      sync.Mutex
	handles map[*Handle]struct{}
	failed  []*Handle
}

// NewPending creates an empty set
func NewPending() *Pending {
	return &Pending{handles: map[*Handle]struct{}{}}
}

// Add registers h. It is removed once its delete finishes and Drain observes it.
func (p *Pending) Add(h *Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handles[h] = struct{}{}
}

// Len returns how many handles have not yet been drained
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

// Keys returns the sorted source keys of undrained handles
func (p *Pending) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.handles))
	for h := range p.handles {
		keys = append(keys, h.Key)
	}
	sort.Strings(keys)
	return keys
}

func (p *Pending) snapshot() []*Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Handle, 0, len(p.handles))
	for h := range p.handles {
		out = append(out, h)
	}
	return out
}

func (p *Pending) remove(h *Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.handles, h)
	if h.err != nil {
		p.failed = append(p.failed, h)
	}
}

// Drain blocks until every registered delete, including ones added while
// draining, has finished. Delete failures are logged where they happen and
// do not fail Drain. It returns early only if ctx is cancelled.
func (p *Pending) Drain(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	for {
		batch := p.snapshot()
		if len(batch) == 0 {
			return nil
		}
		logger.Debug().Int("pending", len(batch)).Msg("waiting for deletes")

		for _, h := range batch {
			select {
			case <-h.done:
				p.remove(h)
			case <-ctx.Done():
				return errors.Errorf("draining %d pending deletes: %w", p.Len(), ctx.Err())
			}
		}
	}
}

// Failed returns the source keys whose delete failed, in drain order
func (p *Pending) Failed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.failed))
	for _, h := range p.failed {
		keys = append(keys, h.Key)
	}
	return keys
}
