package domain

// PointList is the response body of the points routes.
type PointList struct {
	Count int      `json:"count"`
	Items []string `json:"items"`
}

// NewPointList builds a PointList whose count always matches its items.
func NewPointList(items []string) PointList {
	if items == nil {
		items = []string{}
	}
	return PointList{Count: len(items), Items: items}
}

// ReadingItem is one reading as rendered by the recent route. The upper-case
// keys mirror the store's field names.
type ReadingItem struct {
	PointName string   `json:"POINTNAME"`
	DT        *string  `json:"DT"`
	DTISO     *string  `json:"DT_ISO"`
	DBZ       *float64 `json:"DBZ"`
}

// NewReadingItem renders r for the API.
func NewReadingItem(r Reading) ReadingItem {
	return ReadingItem{
		PointName: r.PointName,
		DT:        FormatTimestamp(r.DT),
		DTISO:     ISOTimestamp(r.DT),
		DBZ:       r.DBZ,
	}
}

// RecentReadings is the response body of the recent route.
type RecentReadings struct {
	Point string        `json:"point"`
	Start *string       `json:"start"`
	End   *string       `json:"end"`
	Count int           `json:"count"`
	Items []ReadingItem `json:"items"`
}
