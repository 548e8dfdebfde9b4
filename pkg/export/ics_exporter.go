package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Event is a single calendar entry. Start and End carry the first
// occurrence; RepeatWeeks > 1 adds a weekly recurrence rule.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	RepeatWeeks int
}

// ICSExporter renders events into an iCalendar (RFC 5545) document.
type ICSExporter struct {
	prodID string
	now    func() time.Time
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{
		prodID: "-//UniPlanner//EN",
		now:    time.Now,
	}
}

// Render produces the calendar bytes for the given events.
func (e *ICSExporter) Render(calendarName string, events []Event) ([]byte, error) {
	if calendarName == "" {
		return nil, fmt.Errorf("ics requires a calendar name")
	}
	buf := &bytes.Buffer{}
	writeLine(buf, "BEGIN:VCALENDAR")
	writeLine(buf, "VERSION:2.0")
	writeLine(buf, "PRODID:"+e.prodID)
	writeLine(buf, "CALSCALE:GREGORIAN")
	writeLine(buf, "METHOD:PUBLISH")
	writeLine(buf, "X-WR-CALNAME:"+escapeText(calendarName))

	stamp := e.now().UTC().Format("20060102T150405Z")
	for _, ev := range events {
		if ev.End.Before(ev.Start) {
			return nil, fmt.Errorf("event %s ends before it starts", ev.UID)
		}
		writeLine(buf, "BEGIN:VEVENT")
		writeLine(buf, "UID:"+ev.UID)
		writeLine(buf, "DTSTAMP:"+stamp)
		writeLine(buf, "DTSTART:"+ev.Start.Format("20060102T150405"))
		writeLine(buf, "DTEND:"+ev.End.Format("20060102T150405"))
		writeLine(buf, "SUMMARY:"+escapeText(ev.Summary))
		if ev.Description != "" {
			writeLine(buf, "DESCRIPTION:"+escapeText(ev.Description))
		}
		writeLine(buf, "LOCATION:"+escapeText(ev.Location))
		if ev.RepeatWeeks > 1 {
			writeLine(buf, fmt.Sprintf("RRULE:FREQ=WEEKLY;COUNT=%d", ev.RepeatWeeks))
		}
		writeLine(buf, "END:VEVENT")
	}

	writeLine(buf, "END:VCALENDAR")
	return buf.Bytes(), nil
}

func writeLine(buf *bytes.Buffer, line string) {
	buf.WriteString(line)
	buf.WriteString("\r\n")
}

// escapeText applies RFC 5545 TEXT escaping.
func escapeText(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(s)
}
