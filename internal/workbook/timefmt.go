package workbook

import "time"

// Layouts cover ISO-style dates plus the display forms produced by the
// built-in spreadsheet date number formats.
var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"01-02-06", "1-2-06", "2-Jan-06", "2-Jan", "Jan-06", "1/2/06 15:04", "1/2/06",
	"3:04 PM", "3:04:05 PM", "15:04", "15:04:05",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
