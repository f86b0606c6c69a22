// Package locator finds the running instances of a Roblox place that contain
// a given player.
//
// A scan resolves the player's avatar headshot URL, reads page 0 of the
// place's instance listing to learn how many pages exist, then requests every
// page concurrently. Each player thumbnail is compared against the headshot;
// an instance holding the player is reported once through the MatchHandler,
// and the scan keeps going so every matching instance is found.
//
// Basic usage:
//
//	client, err := roblox.Login(token)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	loc := locator.New(client, locator.WithMatchHandler(func(m locator.Match) {
//		fmt.Println(m.JoinScript)
//	}))
//	summary, err := loc.Locate(ctx, placeID, userID)
//
// The first page that fails aborts the scan and cancels the requests still in
// flight. Matches handled before the failure are kept in the returned Summary.
package locator
