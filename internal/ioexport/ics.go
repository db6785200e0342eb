package ioexport

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/pkg/query"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schedule"
)

// ICSProductID identifies gomi in calendar feeds.
const ICSProductID = "-//gomi//Nonoichi waste calendar//JA"

// Calendar describes an iCalendar feed.
type Calendar struct {
	// Name is shown by calendar apps as the title of the feed.
	Name string

	// TimeZone is the IANA zone of deadlines, for example Asia/Tokyo.
	TimeZone string

	// Alarm adds a reminder this long before the deadline of events that
	// have one. Zero means no reminders.
	Alarm time.Duration

	// Stamp is written as DTSTAMP of every event.
	Stamp time.Time
}

// WriteICS writes events as all-day iCalendar events. UIDs are derived
// from area, category and date, so subscribed calendars update in place.
func WriteICS(w io.Writer, cal Calendar, events []query.Event) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format, args...)
		bw.WriteString("\r\n")
	}

	stamp := cal.Stamp.UTC().Format("20060102T150405Z")

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", ICSProductID)
	line("METHOD:PUBLISH")
	line("CALSCALE:GREGORIAN")
	line("X-WR-CALNAME:%s", escapeText(cal.Name))
	if cal.TimeZone != "" {
		line("X-WR-TIMEZONE:%s", cal.TimeZone)
	}
	line("X-PUBLISHED-TTL:PT12H")

	for _, ev := range events {
		date, err := time.Parse(schedule.DateFormat, ev.Date)
		if err != nil {
			return fmt.Errorf("event %s/%s: %w", ev.AreaID, ev.CategoryID, err)
		}

		line("BEGIN:VEVENT")
		line("UID:%s-%s-%s@gomi", ev.Date, ev.CategoryID, ev.AreaID)
		line("DTSTAMP:%s", stamp)
		line("DTSTART;VALUE=DATE:%s", date.Format("20060102"))
		line("DTEND;VALUE=DATE:%s", date.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:%s", escapeText(ev.CategoryName))
		line("DESCRIPTION:%s", escapeText(description(ev)))
		line("LOCATION:%s", escapeText(ev.AreaName))
		if trigger, ok := alarmTrigger(ev.DeadlineTime, cal.Alarm); ok {
			line("BEGIN:VALARM")
			line("ACTION:DISPLAY")
			line("DESCRIPTION:%s", escapeText(ev.CategoryName))
			line("TRIGGER:%s", trigger)
			line("END:VALARM")
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return bw.Flush()
}

func description(ev query.Event) string {
	var parts []string
	if ev.DeadlineTime != "" {
		parts = append(parts, ev.DeadlineTime+"までに出してください")
	}
	if ev.Note != "" {
		parts = append(parts, ev.Note)
	}
	return strings.Join(parts, "\n")
}

// alarmTrigger returns a trigger relative to the start of the all-day
// event, which is midnight of the collection date.
func alarmTrigger(deadline string, before time.Duration) (string, bool) {
	if deadline == "" || before <= 0 {
		return "", false
	}
	t, err := time.Parse("15:04", deadline)
	if err != nil {
		return "", false
	}
	offset := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute - before

	sign := ""
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	mins := int(offset.Minutes())
	return fmt.Sprintf("%sPT%dH%dM", sign, mins/60, mins%60), true
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
