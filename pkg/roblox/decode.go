package roblox

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	errs "rblxlocate/pkg/errors"
)

// The games endpoint is undocumented and its field types drift: numbers arrive
// as strings, strings as numbers, and optional objects as null. Record fields
// are decoded through the flex types below, which fall back to the zero value
// on a type mismatch instead of failing the page. Only the top-level keys the
// locator depends on are structurally required.

var jsonNull = []byte("null")

func isNull(b []byte) bool {
	return len(b) == 0 || bytes.Equal(bytes.TrimSpace(b), jsonNull)
}

// flexString accepts a string, a number or a bool. Anything else is "".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case isNull(b):
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			*s = ""
			return nil
		}
		*s = flexString(v)
	case b[0] == '{' || b[0] == '[':
		*s = ""
	default:
		*s = flexString(b)
	}
	return nil
}

// flexInt accepts an integer, a float (truncated) or a numeric string
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	v, ok := parseNumber(b)
	if !ok {
		*n = 0
		return nil
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		*n = flexInt(i)
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*n = flexInt(int64(f))
		return nil
	}
	*n = 0
	return nil
}

// flexFloat accepts a number or a numeric string
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	v, ok := parseNumber(b)
	if !ok {
		*f = 0
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(parsed)
	return nil
}

// flexBool accepts true/false, "true"/"false" in any case, and 0/1
type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			s = ""
		}
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		*v = true
	default:
		*v = false
	}
	return nil
}

// optString is a flexString that remembers whether a value was present
type optString struct {
	set bool
	val flexString
}

func (o *optString) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*o = optString{}
		return nil
	}
	o.set = true
	return o.val.UnmarshalJSON(b)
}

func (o optString) ptr() *string {
	if !o.set {
		return nil
	}
	s := string(o.val)
	return &s
}

// optInt is a flexInt that remembers whether a usable value was present
type optInt struct {
	set bool
	val flexInt
}

func (o *optInt) UnmarshalJSON(b []byte) error {
	if _, ok := parseNumber(b); !ok {
		*o = optInt{}
		return nil
	}
	o.set = true
	return o.val.UnmarshalJSON(b)
}

func (o optInt) ptr() *int64 {
	if !o.set {
		return nil
	}
	i := int64(o.val)
	return &i
}

// lenientSlice decodes a JSON array element by element, dropping elements
// that do not decode into T. A non-array value yields an empty slice.
type lenientSlice[T any] []T

func (s *lenientSlice[T]) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = nil
		return nil
	}
	out := make([]T, 0, len(raw))
	for _, elem := range raw {
		if isNull(elem) {
			continue
		}
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*s = out
	return nil
}

// parseNumber unwraps a JSON number or numeric string into its text form
func parseNumber(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return "", false
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return "", false
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", false
	}
	return s, true
}

type rawThumbnail struct {
	AssetID     optInt     `json:"AssetId"`
	AssetHash   optString  `json:"AssetHash"`
	AssetTypeID optInt     `json:"AssetTypeId"`
	URL         flexString `json:"Url"`
	IsFinal     flexBool   `json:"IsFinal"`
}

type rawPlayer struct {
	ID        optString        `json:"Id"`
	Username  optString        `json:"Username"`
	Thumbnail lenientThumbnail `json:"Thumbnail"`
}

type lenientThumbnail struct {
	rawThumbnail
}

func (t *lenientThumbnail) UnmarshalJSON(b []byte) error {
	var raw rawThumbnail
	if err := json.Unmarshal(b, &raw); err != nil {
		*t = lenientThumbnail{}
		return nil
	}
	t.rawThumbnail = raw
	return nil
}

type rawInstance struct {
	Capacity            flexInt                 `json:"Capacity"`
	Ping                flexInt                 `json:"Ping"`
	Fps                 flexFloat               `json:"Fps"`
	ShowSlowGameMessage flexBool                `json:"ShowSlowGameMessage"`
	GUID                flexString              `json:"Guid"`
	PlaceID             flexString              `json:"PlaceId"`
	CurrentPlayers      lenientSlice[rawPlayer] `json:"CurrentPlayers"`
	UserCanJoin         flexBool                `json:"UserCanJoin"`
	ShowShutdownButton  flexBool                `json:"ShowShutdownButton"`
	JoinScript          flexString              `json:"JoinScript"`
	FriendsDescription  flexString              `json:"FriendsDescription"`
	FriendsMouseover    flexString              `json:"FriendsMouseover"`
	PlayersCapacity     flexString              `json:"PlayersCapacity"`
}

func (r rawThumbnail) record() Thumbnail {
	return Thumbnail{
		AssetID:     r.AssetID.ptr(),
		AssetHash:   r.AssetHash.ptr(),
		AssetTypeID: r.AssetTypeID.ptr(),
		URL:         string(r.URL),
		IsFinal:     bool(r.IsFinal),
	}
}

func (r rawPlayer) record() Player {
	return Player{
		ID:        r.ID.ptr(),
		Username:  r.Username.ptr(),
		Thumbnail: r.Thumbnail.record(),
	}
}

func (r rawInstance) record() Instance {
	players := make([]Player, len(r.CurrentPlayers))
	for i, p := range r.CurrentPlayers {
		players[i] = p.record()
	}
	return Instance{
		Capacity:            int(r.Capacity),
		Ping:                int(r.Ping),
		Fps:                 float64(r.Fps),
		ShowSlowGameMessage: bool(r.ShowSlowGameMessage),
		GUID:                string(r.GUID),
		PlaceID:             string(r.PlaceID),
		CurrentPlayers:      players,
		UserCanJoin:         bool(r.UserCanJoin),
		ShowShutdownButton:  bool(r.ShowShutdownButton),
		JoinScript:          string(r.JoinScript),
		FriendsDescription:  string(r.FriendsDescription),
		FriendsMouseover:    string(r.FriendsMouseover),
		PlayersCapacity:     string(r.PlayersCapacity),
	}
}

// decodeInstances turns a games endpoint body into a page. TotalCollectionSize
// and Collection must both be present and non-null; Collection must be an
// array of objects.
func decodeInstances(body []byte, status int) (*Instances, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, errs.NewDecode("instances response is not a JSON object", status, err)
	}

	totalRaw, ok := top["TotalCollectionSize"]
	if !ok || isNull(totalRaw) {
		return nil, errs.NewDecode("instances response is missing TotalCollectionSize", status, nil)
	}
	if _, ok := parseNumber(totalRaw); !ok {
		return nil, errs.NewDecode(fmt.Sprintf("TotalCollectionSize is not a number: %s", totalRaw), status, nil)
	}
	var total flexInt
	_ = total.UnmarshalJSON(totalRaw)

	collRaw, ok := top["Collection"]
	if !ok || isNull(collRaw) {
		return nil, errs.NewDecode("instances response is missing Collection", status, nil)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(collRaw, &elems); err != nil {
		return nil, errs.NewDecode("Collection is not an array", status, err)
	}

	page := &Instances{
		Total:     int(total),
		Instances: make([]Instance, 0, len(elems)),
	}
	for i, elem := range elems {
		var raw rawInstance
		if isNull(elem) {
			return nil, errs.NewDecode(fmt.Sprintf("Collection[%d] is null", i), status, nil)
		}
		if err := json.Unmarshal(elem, &raw); err != nil {
			return nil, errs.NewDecode(fmt.Sprintf("Collection[%d] is not an object", i), status, err)
		}
		page.Instances = append(page.Instances, raw.record())
	}
	return page, nil
}

// decodeHeadshotData extracts the raw entries of a thumbnails response. A
// missing or null data key is an empty result.
func decodeHeadshotData(body []byte, status int) ([]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, errs.NewDecode("headshot response is not a JSON object", status, err)
	}

	dataRaw, ok := top["data"]
	if !ok || isNull(dataRaw) {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(dataRaw, &entries); err != nil {
		return nil, errs.NewDecode("headshot data is not an array", status, err)
	}
	return entries, nil
}

// decodeHeadshot converts one thumbnails entry. Both targetId and imageUrl
// keys must exist; their values are coerced to strings.
func decodeHeadshot(entry json.RawMessage) (Headshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil {
		return Headshot{}, errs.NewDecode("headshot entry is not an object", 0, err)
	}

	idRaw, ok := fields["targetId"]
	if !ok {
		return Headshot{}, errs.NewDecode("headshot entry is missing targetId", 0, nil)
	}
	urlRaw, ok := fields["imageUrl"]
	if !ok {
		return Headshot{}, errs.NewDecode("headshot entry is missing imageUrl", 0, nil)
	}

	var id, url flexString
	_ = id.UnmarshalJSON(idRaw)
	_ = url.UnmarshalJSON(urlRaw)
	return Headshot{ID: string(id), URL: string(url)}, nil
}
