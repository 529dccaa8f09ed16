package notify

import (
	"fmt"
	"strings"
	"time"
)

const (
	greeting  = "Hi everyone,\r\n"
	signature = "Thank you and God Bless!\r\n\r\nJustus"

	dateLayout = "Monday, January 2"
	timeLayout = "3:04 PM"

	CalendarSubject = "Children's Choir Calendar"
	ReminderSubject = "Children's Choir Reminder"
)

// FormatDate renders a date as "Monday, January 2".
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatTime renders a clock time as "3:04 PM".
func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// ArticleNotice announces a newly available article. The title doubles as
// the subject line.
func ArticleNotice(title string) (Notice, bool) {
	if title == "" {
		return Notice{}, false
	}
	text := fmt.Sprintf("The %s are available on the Children's Choir website at olmmcc [dot] tk.", title)
	return Notice{
		Kind:    KindArticle,
		Subject: title,
		Body:    body(text),
	}, true
}

// CalendarNotice announces every pending practice and at most one other
// event. It returns false when the batch has nothing to report.
func CalendarNotice(events []Event) (Notice, bool) {
	practices, other := PartitionEvents(events)
	if len(practices) == 0 && other == nil {
		return Notice{}, false
	}

	var sentences []string
	if len(practices) > 0 {
		items := make([]string, len(practices))
		for i, p := range practices {
			items[i] = "on " + dateRange(p)
		}
		noun := "practice"
		if len(practices) > 1 {
			noun = "practices"
		}
		sentences = append(sentences, fmt.Sprintf("The next %s will be %s.", noun, joinPhrases(items, ", and ")))
	}
	if other != nil {
		lead := "We will have our"
		if len(practices) > 0 {
			lead = "We will also have our"
		}
		sentences = append(sentences, fmt.Sprintf("%s %s on %s.", lead, other.Title, dateRange(*other)))
		if notes := strings.TrimSpace(other.Notes); notes != "" {
			sentences = append(sentences, notes)
		}
	}

	return Notice{
		Kind:    KindCalendar,
		Subject: CalendarSubject,
		Body:    body(strings.Join(sentences, " ")),
	}, true
}

// ReminderNotice lists everything happening today.
func ReminderNotice(events []Event) (Notice, bool) {
	if len(events) == 0 {
		return Notice{}, false
	}
	items := make([]string, len(events))
	for i, e := range events {
		items[i] = fmt.Sprintf("our %s from %s to %s", e.Title, FormatTime(e.Start), FormatTime(e.End))
	}
	text := fmt.Sprintf("This is a reminder that today we have %s.", joinPhrases(items, " and "))
	return Notice{
		Kind:    KindReminder,
		Subject: ReminderSubject,
		Body:    body(text),
	}, true
}

// dateRange renders "Monday, January 2, from 9:00 AM to 10:30 AM".
func dateRange(e Event) string {
	return fmt.Sprintf("%s, from %s to %s", FormatDate(e.Date), FormatTime(e.Start), FormatTime(e.End))
}

// joinPhrases joins items as an English list. Two items use pair as the
// separator; longer lists are comma separated with "and" before the last.
func joinPhrases(items []string, pair string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + pair + items[1]
	}
	last := len(items) - 1
	return strings.Join(items[:last], ", ") + ", and " + items[last]
}

func body(text string) string {
	return greeting + text + " " + signature
}
