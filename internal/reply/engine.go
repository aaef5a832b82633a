package reply

import (
	"context"

	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/logger"
	"histofin-bot/internal/store"
)

// Engine searches the platform for posts matching configured keywords and
// replies with a fixed template. Every reply attempt is independent: a
// failure on one candidate never aborts the remaining candidates, and a
// failed search for one keyword never aborts the remaining keywords.
type Engine struct {
	cfg  *store.Config
	pub  interfaces.Publisher
	seen *seenSet // nil when duplicate tracking is disabled
}

func NewEngine(cfg *store.Config, pub interfaces.Publisher) *Engine {
	e := &Engine{cfg: cfg, pub: pub}
	if cfg.Reply.TrackSeen {
		e.seen = newSeenSet(cfg.Reply.SeenCap)
	}
	return e
}

// Run executes one reply cycle. It returns an error only when nothing was
// attempted at all, so the scheduler can log a fully dead cycle.
func (e *Engine) Run(ctx context.Context) error {
	var attempted, succeeded int

	for _, keyword := range e.cfg.Reply.Keywords {
		targets, err := e.pub.Search(ctx, keyword, e.cfg.Reply.PerKeyword)
		if err != nil {
			logger.ErrorWithErr(ctx, "Keyword search failed", err, "keyword", keyword)
			continue
		}

		for _, target := range targets {
			if e.seen != nil && e.seen.contains(target.ID) {
				logger.Debug(ctx, "Skipping already-replied post", "target_id", target.ID)
				continue
			}

			attempted++
			postID, err := e.pub.Reply(ctx, e.cfg.Reply.Template, target.ID)
			if err != nil {
				logger.ErrorWithErr(ctx, "Reply attempt failed", err,
					"keyword", keyword,
					"target_id", target.ID,
					"target_author", target.AuthorHandle,
				)
				continue
			}

			succeeded++
			if e.seen != nil {
				e.seen.add(target.ID)
			}
			logger.Reply(ctx, keyword, target.ID, postID)
		}
	}

	logger.Info(ctx, "Reply cycle finished", "attempted", attempted, "succeeded", succeeded)
	return nil
}

// seenSet is a bounded in-memory record of post ids already replied to.
// Oldest entries are evicted first; a process restart forgets everything,
// which is accepted under the no-persistence constraint.
type seenSet struct {
	ids   map[string]struct{}
	order []string
	cap   int
}

func newSeenSet(cap int) *seenSet {
	if cap <= 0 {
		cap = 512
	}
	return &seenSet{
		ids: make(map[string]struct{}, cap),
		cap: cap,
	}
}

func (s *seenSet) contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *seenSet) add(id string) {
	if _, ok := s.ids[id]; ok {
		return
	}
	if len(s.order) >= s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
}
