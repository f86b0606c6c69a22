package locator

import (
	"context"

	"rblxlocate/pkg/roblox"
)

// PlatformClient is the subset of the Roblox client the locator needs
type PlatformClient interface {
	Instances(ctx context.Context, placeID, startIndex string) (*roblox.Instances, error)
	HeadshotURLs(ctx context.Context, userIDs []string, opts ...roblox.HeadshotOption) (*roblox.Headshots, error)
}

// Observer follows a scan as it progresses. Calls are made from a single
// goroutine except PageStarted, which runs on the page's own goroutine.
type Observer interface {
	// ScanStarted fires once page 0 has been read and the page count is known
	ScanStarted(targetURL string, total, pages int)
	PageStarted(startIndex string)
	PageScanned(startIndex string, instances, players int)
	PageFailed(startIndex string, err error)
	MatchFound(m Match)
}

// NopObserver ignores every event. Embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) ScanStarted(string, int, int) {}
func (NopObserver) PageStarted(string)           {}
func (NopObserver) PageScanned(string, int, int) {}
func (NopObserver) PageFailed(string, error)     {}
func (NopObserver) MatchFound(Match)             {}
