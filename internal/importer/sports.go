package importer

// SportTab is one entry of the curated sport selection exposed to callers.
type SportTab struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Group string `json:"group"`
}

// Sports is the curated set of feed sport keys the platform imports from.
var Sports = []SportTab{
	{Key: "americanfootball_nfl", Label: "NFL", Group: "American Football"},
	{Key: "americanfootball_ncaaf", Label: "NCAAF", Group: "American Football"},
	{Key: "basketball_nba", Label: "NBA", Group: "Basketball"},
	{Key: "baseball_mlb", Label: "MLB", Group: "Baseball"},
	{Key: "icehockey_nhl", Label: "NHL", Group: "Ice Hockey"},
	{Key: "soccer_usa_mls", Label: "MLS", Group: "Soccer"},
	{Key: "soccer_epl", Label: "EPL", Group: "Soccer"},
	{Key: "cricket_test_match", Label: "Cricket", Group: "Cricket"},
	{Key: "tennis_atp_french_open", Label: "ATP", Group: "Tennis"},
	{Key: "mma_mixed_martial_arts", Label: "MMA", Group: "MMA"},
}

var sportLabels = map[string]string{
	"americanfootball_nfl":   "American Football",
	"americanfootball_ncaaf": "American Football",
	"basketball_nba":         "Basketball",
	"baseball_mlb":           "Baseball",
	"icehockey_nhl":          "Ice Hockey",
	"soccer_usa_mls":         "Soccer",
	"soccer_epl":             "Soccer",
	"cricket_test_match":     "Cricket",
	"tennis_atp_french_open": "Tennis",
	"mma_mixed_martial_arts": "MMA",
}

// SportLabel maps a feed sport key to the platform's sport display name. An
// unknown key falls back to the key itself so imports never block on naming.
func SportLabel(sportKey string) string {
	if label, ok := sportLabels[sportKey]; ok {
		return label
	}
	return sportKey
}

// KnownSportKey reports whether the key belongs to the curated set.
func KnownSportKey(sportKey string) bool {
	for _, s := range Sports {
		if s.Key == sportKey {
			return true
		}
	}
	return false
}
