// Package roblox is a small client for the two undocumented Roblox web
// endpoints the locator needs: the paginated instance listing of a place and
// the avatar headshot thumbnail API.
//
// A session is created once and closed once:
//
//	client, err := roblox.Login(token, roblox.FromConfig(cfg, log)...)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	shots, err := client.HeadshotURLs(ctx, []string{userID}, roblox.WithSize(roblox.Medium))
//	first, err := shots.Next()
//
//	page, err := client.Instances(ctx, placeID, "0")
//	for _, start := range page.Indexes() {
//		...
//	}
//
// Responses are decoded leniently: mistyped or missing record fields take
// their zero value, while a missing TotalCollectionSize or Collection is a
// decode error. HTTP failures are reported as *errors.Error values for which
// errors.IsTransport is true.
package roblox
