package roblox

import (
	"math"
	"strconv"
)

// PageSize is the number of instances the games endpoint returns per page
const PageSize = 10

// Thumbnail is one rendered avatar image of a player. URL is the only field
// used for matching; the others are usually absent.
type Thumbnail struct {
	AssetID     *int64
	AssetHash   *string
	AssetTypeID *int64
	URL         string
	IsFinal     bool
}

// Player is one occupant of a running instance
type Player struct {
	ID        *string
	Username  *string
	Thumbnail Thumbnail
}

// Instance is one running server of a place
type Instance struct {
	Capacity            int
	Ping                int
	Fps                 float64
	ShowSlowGameMessage bool
	GUID                string
	PlaceID             string
	CurrentPlayers      []Player
	UserCanJoin         bool
	ShowShutdownButton  bool
	JoinScript          string
	FriendsDescription  string
	FriendsMouseover    string
	PlayersCapacity     string
}

// Instances is one page of the games endpoint. Total counts instances across
// every page, Instances holds only this page's slice.
type Instances struct {
	Total     int
	Instances []Instance
}

// Pages returns the page count implied by Total
func (i *Instances) Pages() int {
	return PageCount(i.Total)
}

// Indexes returns the start index of every page implied by Total
func (i *Instances) Indexes() []string {
	return StartIndexes(i.Pages())
}

// Headshot is the resolved avatar headshot URL of one user
type Headshot struct {
	ID  string
	URL string
}

// PageCount derives how many pages cover total instances. The platform's
// reported totals are biased by five and rounded to the nearest ten with
// ties going to the even ten, so 20 yields 2 pages and 30 yields 4.
func PageCount(total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(total+5) / PageSize))
}

// StartIndexes returns "0", "10", ... for pageCount pages
func StartIndexes(pageCount int) []string {
	if pageCount <= 0 {
		return nil
	}
	out := make([]string, pageCount)
	for i := range out {
		out[i] = strconv.Itoa(i * PageSize)
	}
	return out
}
