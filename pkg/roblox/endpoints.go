package roblox

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
)

const (
	// GamesBaseURL hosts the instance listing endpoint
	GamesBaseURL = "https://www.roblox.com"

	// ThumbnailsBaseURL hosts the avatar thumbnail API
	ThumbnailsBaseURL = "https://thumbnails.roblox.com"

	// InstancesEndpoint lists running instances of a place, one page at a time
	InstancesEndpoint = "/games/getgameinstancesjson"

	// HeadshotEndpoint resolves avatar headshot image URLs for user ids
	HeadshotEndpoint = "/v1/users/avatar-headshot"

	// SecurityCookie carries the session credential on every request
	SecurityCookie = ".ROBLOSECURITY"

	// DefaultFormat is the headshot image format requested when none is given
	DefaultFormat = "png"
)

// InstancesURL builds the games endpoint URL for one page of a place
func InstancesURL(baseURL, placeID, startIndex string) string {
	params := url.Values{}
	params.Set("placeId", placeID)
	params.Set("startIndex", startIndex)

	return strings.TrimRight(baseURL, "/") + InstancesEndpoint + "?" + params.Encode()
}

// HeadshotURL builds the thumbnails endpoint URL for a batch of user ids
func HeadshotURL(baseURL string, userIDs []string, format string, size Size) string {
	params := url.Values{}
	params.Set("userIds", strings.Join(userIDs, ","))
	params.Set("format", format)
	params.Set("size", size.String())

	return strings.TrimRight(baseURL, "/") + HeadshotEndpoint + "?" + params.Encode()
}

// normalizeIDs trims whitespace and drops empty ids
func normalizeIDs(ids []string) []string {
	return lo.Compact(lo.Map(ids, func(id string, _ int) string {
		return strings.TrimSpace(id)
	}))
}
