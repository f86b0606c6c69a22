package locator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"rblxlocate/pkg/logger"
	"rblxlocate/pkg/roblox"
)

// ErrHeadshotNotFound means the thumbnails API returned no usable headshot for
// the target user, so there is nothing to compare players against.
var ErrHeadshotNotFound = errors.New("no headshot found for user")

// ErrScanAborted is reported to observers for pages that completed after
// another page had already failed the scan.
var ErrScanAborted = errors.New("scan aborted")

// Match is one instance in which the target player was seen
type Match struct {
	PlaceID      string
	UserID       string
	StartIndex   string
	InstanceGUID string
	JoinScript   string
}

// MatchHandler receives matches as they are found. It is never called
// concurrently.
type MatchHandler func(Match)

// Summary describes a finished (or aborted) scan
type Summary struct {
	TargetURL        string
	Total            int
	Pages            int
	PagesScanned     int
	InstancesScanned int
	PlayersScanned   int
	Matches          []Match
	Elapsed          time.Duration
}

// Found reports whether at least one match was emitted
func (s *Summary) Found() bool {
	return len(s.Matches) > 0
}

// JoinScripts returns the distinct join scripts in the order they were found
func (s *Summary) JoinScripts() []string {
	return lo.Uniq(lo.Map(s.Matches, func(m Match, _ int) string {
		return m.JoinScript
	}))
}

// Locator searches every instance of a place for a player
type Locator struct {
	client        PlatformClient
	onMatch       MatchHandler
	observer      Observer
	logger        logger.Logger
	maxConcurrent int
	headshotOpts  []roblox.HeadshotOption
}

// Option configures a Locator
type Option func(*Locator)

// WithMatchHandler sets the callback invoked for every match
func WithMatchHandler(h MatchHandler) Option {
	return func(l *Locator) {
		l.onMatch = h
	}
}

// WithObserver attaches a progress observer
func WithObserver(o Observer) Option {
	return func(l *Locator) {
		if o != nil {
			l.observer = o
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(l *Locator) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithMaxConcurrentPages bounds the number of in-flight page requests.
// Zero launches every page at once.
func WithMaxConcurrentPages(n int) Option {
	return func(l *Locator) {
		if n >= 0 {
			l.maxConcurrent = n
		}
	}
}

// WithHeadshotOptions sets the size and format used to resolve the target headshot.
// Player thumbnails in instance listings are 48x48 PNGs, so other values rarely match.
func WithHeadshotOptions(opts ...roblox.HeadshotOption) Option {
	return func(l *Locator) {
		l.headshotOpts = opts
	}
}

// New creates a Locator over client
func New(client PlatformClient, opts ...Option) *Locator {
	l := &Locator{
		client:   client,
		onMatch:  func(Match) {},
		observer: NopObserver{},
		logger:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.onMatch == nil {
		l.onMatch = func(Match) {}
	}
	return l
}

type pageResult struct {
	startIndex string
	page       *roblox.Instances
	err        error
}

// Locate resolves userID's headshot, learns the page count of placeID from
// page 0, then fetches every page concurrently and reports each instance
// whose player list contains the headshot. Scanning does not stop at the
// first match. The first failed page aborts the scan; matches already
// handled stay handled and are included in the returned Summary.
func (l *Locator) Locate(ctx context.Context, placeID, userID string) (*Summary, error) {
	started := time.Now()
	log := l.logger.WithFields(map[string]interface{}{
		"place_id": placeID,
		"user_id":  userID,
	})

	target, err := l.resolveHeadshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	first, err := l.client.Instances(ctx, placeID, "0")
	if err != nil {
		return nil, fmt.Errorf("discovering instance count: %w", err)
	}

	indexes := first.Indexes()
	summary := &Summary{
		TargetURL: target.URL,
		Total:     first.Total,
		Pages:     len(indexes),
	}
	l.observer.ScanStarted(target.URL, first.Total, len(indexes))
	logger.LogComponentStart(log, "locator", map[string]interface{}{
		"total": first.Total,
		"pages": len(indexes),
	})

	err = l.scan(ctx, placeID, userID, target.URL, indexes, summary, log)
	summary.Elapsed = time.Since(started)

	if err != nil {
		logger.LogComponentStop(log.WithError(err), "locator", "page failed")
		return summary, err
	}
	logger.LogComponentStop(log, "locator", fmt.Sprintf("%d match(es)", len(summary.Matches)))
	return summary, nil
}

func (l *Locator) resolveHeadshot(ctx context.Context, userID string) (roblox.Headshot, error) {
	shots, err := l.client.HeadshotURLs(ctx, []string{userID}, l.headshotOpts...)
	if err != nil {
		return roblox.Headshot{}, fmt.Errorf("resolving headshot of user %s: %w", userID, err)
	}

	l.logger.DebugWithFields("Headshot lookup returned", map[string]interface{}{
		"user_id":   userID,
		"requested": shots.Requested(),
		"returned":  shots.Remaining(),
	})

	target, err := shots.Next()
	if errors.Is(err, roblox.ErrEmptySequence) {
		return roblox.Headshot{}, fmt.Errorf("%w %s: %w", ErrHeadshotNotFound, userID, err)
	}
	if err != nil {
		return roblox.Headshot{}, fmt.Errorf("resolving headshot of user %s: %w", userID, err)
	}
	// An unresolved thumbnail has no URL and would match every player without one
	if target.URL == "" {
		return roblox.Headshot{}, fmt.Errorf("%w %s: headshot has no image URL", ErrHeadshotNotFound, userID)
	}
	return target, nil
}

// scan fans out one request per start index and consumes pages in completion order
func (l *Locator) scan(ctx context.Context, placeID, userID, targetURL string, indexes []string, summary *Summary, log logger.Logger) error {
	if len(indexes) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if l.maxConcurrent > 0 {
		g.SetLimit(l.maxConcurrent)
	}

	results := make(chan pageResult, len(indexes))
	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for _, start := range indexes {
			g.Go(func() error {
				l.observer.PageStarted(start)
				page, err := l.client.Instances(gctx, placeID, start)
				results <- pageResult{startIndex: start, page: page, err: err}
				return err
			})
		}
	}()

	var firstErr, skipped error
	for range indexes {
		res := <-results
		if firstErr != nil {
			// Drain so every goroutine finishes before returning. Every started
			// page still ends with exactly one observer callback.
			err := res.err
			if err == nil {
				err = skipped
			}
			l.observer.PageFailed(res.startIndex, err)
			continue
		}
		if res.err != nil {
			firstErr = fmt.Errorf("scanning page at %s: %w", res.startIndex, res.err)
			skipped = fmt.Errorf("%w: page at %s failed", ErrScanAborted, res.startIndex)
			l.observer.PageFailed(res.startIndex, res.err)
			log.WithError(res.err).WarnWithFields("instance page failed", map[string]interface{}{
				"start_index": res.startIndex,
			})
			continue
		}
		l.scanPage(placeID, userID, targetURL, res, summary, log)
	}

	<-launched
	_ = g.Wait()
	return firstErr
}

func (l *Locator) scanPage(placeID, userID, targetURL string, res pageResult, summary *Summary, log logger.Logger) {
	players := 0
	for _, ins := range res.page.Instances {
		for _, player := range ins.CurrentPlayers {
			players++
			if player.Thumbnail.URL != targetURL {
				continue
			}
			m := Match{
				PlaceID:      placeID,
				UserID:       userID,
				StartIndex:   res.startIndex,
				InstanceGUID: ins.GUID,
				JoinScript:   ins.JoinScript,
			}
			summary.Matches = append(summary.Matches, m)
			logger.LogMatch(log, placeID, userID, ins.GUID)
			l.onMatch(m)
			l.observer.MatchFound(m)
			break
		}
	}

	summary.PagesScanned++
	summary.InstancesScanned += len(res.page.Instances)
	summary.PlayersScanned += players

	logger.LogPageScan(log, placeID, res.startIndex, len(res.page.Instances), players)
	l.observer.PageScanned(res.startIndex, len(res.page.Instances), players)
}
