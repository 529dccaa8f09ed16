package notify_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olmmcc/emaild/internal/notify"
)

const wantSignature = "Thank you and God Bless!\r\n\r\nJustus"

func event(id int64, title string, date time.Time, startH, startM, endH, endM int, practice bool) notify.Event {
	return notify.Event{
		ID:         id,
		Title:      title,
		Date:       date,
		Start:      time.Date(date.Year(), date.Month(), date.Day(), startH, startM, 0, 0, time.UTC),
		End:        time.Date(date.Year(), date.Month(), date.Day(), endH, endM, 0, 0, time.UTC),
		IsPractice: practice,
	}
}

func TestFormatDateAndTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.April, 5, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "Sunday, April 5", notify.FormatDate(ts))
	assert.Equal(t, "9:05 AM", notify.FormatTime(ts))
	assert.Equal(t, "12:00 PM", notify.FormatTime(time.Date(2026, time.April, 5, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "7:30 PM", notify.FormatTime(time.Date(2026, time.April, 5, 19, 30, 0, 0, time.UTC)))
}

func TestArticleNotice(t *testing.T) {
	t.Parallel()

	t.Run("no title sends nothing", func(t *testing.T) {
		t.Parallel()
		_, ok := notify.ArticleNotice("")
		assert.False(t, ok)
	})

	t.Run("announces the title", func(t *testing.T) {
		t.Parallel()
		n, ok := notify.ArticleNotice("Spring Concert Program")
		require.True(t, ok)
		assert.Equal(t, notify.KindArticle, n.Kind)
		assert.Equal(t, "Spring Concert Program", n.Subject)
		assert.Equal(t,
			"Hi everyone,\r\nThe Spring Concert Program are available on the Children's Choir website at olmmcc [dot] tk. "+wantSignature,
			n.Body)
	})
}

func TestCalendarNotice(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, time.March, 21, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2026, time.March, 28, 0, 0, 0, 0, time.UTC)

	t.Run("empty batch sends nothing", func(t *testing.T) {
		t.Parallel()
		_, ok := notify.CalendarNotice(nil)
		assert.False(t, ok)
	})

	t.Run("single practice has no joiner", func(t *testing.T) {
		t.Parallel()
		n, ok := notify.CalendarNotice([]notify.Event{
			event(1, "Practice", d1, 9, 0, 10, 30, true),
		})
		require.True(t, ok)
		assert.Equal(t, notify.CalendarSubject, n.Subject)
		assert.Equal(t,
			"Hi everyone,\r\nThe next practice will be on Saturday, March 14, from 9:00 AM to 10:30 AM. "+wantSignature,
			n.Body)
	})

	t.Run("two practices join with a comma and and", func(t *testing.T) {
		t.Parallel()
		n, ok := notify.CalendarNotice([]notify.Event{
			event(1, "Practice", d1, 9, 0, 10, 30, true),
			event(2, "Practice", d2, 9, 0, 10, 30, true),
		})
		require.True(t, ok)
		assert.Contains(t, n.Body,
			"The next practices will be on Saturday, March 14, from 9:00 AM to 10:30 AM, and on Saturday, March 21, from 9:00 AM to 10:30 AM.")
	})

	t.Run("three practices use serial commas", func(t *testing.T) {
		t.Parallel()
		n, ok := notify.CalendarNotice([]notify.Event{
			event(1, "Practice", d1, 9, 0, 10, 0, true),
			event(2, "Practice", d2, 9, 0, 10, 0, true),
			event(3, "Practice", d3, 13, 0, 14, 15, true),
		})
		require.True(t, ok)
		assert.Contains(t, n.Body,
			"will be on Saturday, March 14, from 9:00 AM to 10:00 AM, on Saturday, March 21, from 9:00 AM to 10:00 AM, and on Saturday, March 28, from 1:00 PM to 2:15 PM.")
	})

	t.Run("only the first other event is announced", func(t *testing.T) {
		t.Parallel()
		n, ok := notify.CalendarNotice([]notify.Event{
			event(1, "Practice", d1, 9, 0, 10, 30, true),
			event(2, "Spring Concert", d3, 18, 0, 19, 30, false),
			event(3, "Parish Picnic", d2, 12, 0, 15, 0, false),
		})
		require.True(t, ok)
		assert.Contains(t, n.Body, "We will also have our Spring Concert on Saturday, March 28, from 6:00 PM to 7:30 PM.")
		assert.NotContains(t, n.Body, "Parish Picnic")
		assert.True(t, strings.HasSuffix(n.Body, wantSignature))
	})

	t.Run("other event without practices", func(t *testing.T) {
		t.Parallel()
		concert := event(2, "Spring Concert", d3, 18, 0, 19, 30, false)
		concert.Notes = "Please arrive by 5:30 PM in uniform."
		n, ok := notify.CalendarNotice([]notify.Event{concert})
		require.True(t, ok)
		assert.Equal(t,
			"Hi everyone,\r\nWe will have our Spring Concert on Saturday, March 28, from 6:00 PM to 7:30 PM. Please arrive by 5:30 PM in uniform. "+wantSignature,
			n.Body)
	})
}

func TestReminderNotice(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)

	t.Run("no events sends nothing", func(t *testing.T) {
		t.Parallel()
		_, ok := notify.ReminderNotice(nil)
		assert.False(t, ok)
	})

	t.Run("single event", func(t *testing.T) {
		t.Parallel()
		n, ok := notify.ReminderNotice([]notify.Event{event(1, "Practice", today, 16, 0, 17, 0, true)})
		require.True(t, ok)
		assert.Equal(t, notify.KindReminder, n.Kind)
		assert.Equal(t,
			"Hi everyone,\r\nThis is a reminder that today we have our Practice from 4:00 PM to 5:00 PM. "+wantSignature,
			n.Body)
	})

	t.Run("two events", func(t *testing.T) {
		t.Parallel()
		n, ok := notify.ReminderNotice([]notify.Event{
			event(1, "Practice", today, 16, 0, 17, 0, true),
			event(2, "Bake Sale", today, 17, 0, 18, 0, false),
		})
		require.True(t, ok)
		assert.Contains(t, n.Body, "our Practice from 4:00 PM to 5:00 PM and our Bake Sale from 5:00 PM to 6:00 PM.")
	})

	t.Run("three events", func(t *testing.T) {
		t.Parallel()
		n, ok := notify.ReminderNotice([]notify.Event{
			event(1, "E1", today, 9, 0, 10, 0, false),
			event(2, "E2", today, 11, 0, 12, 0, false),
			event(3, "E3", today, 13, 0, 14, 0, false),
		})
		require.True(t, ok)
		assert.Contains(t, n.Body,
			"today we have our E1 from 9:00 AM to 10:00 AM, our E2 from 11:00 AM to 12:00 PM, and our E3 from 1:00 PM to 2:00 PM.")
	})
}
