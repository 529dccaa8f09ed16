package notify

import "time"

// SubscriptionPolicy is the code stored in the subscription_policy column.
type SubscriptionPolicy string

const (
	PolicyNewsletter SubscriptionPolicy = "1"
	PolicyReminders  SubscriptionPolicy = "2"
)

// Table names a table that carries subscriber email addresses.
type Table string

const (
	TableUsers Table = "users"
	TableAdmin Table = "admin"
)

// Source is a single (table, policy) pair contributing to a recipient list.
type Source struct {
	Table  Table
	Policy SubscriptionPolicy
}

// EveryoneSources covers newsletter and reminder subscribers in both tables.
func EveryoneSources() []Source {
	return []Source{
		{Table: TableUsers, Policy: PolicyNewsletter},
		{Table: TableUsers, Policy: PolicyReminders},
		{Table: TableAdmin, Policy: PolicyNewsletter},
		{Table: TableAdmin, Policy: PolicyReminders},
	}
}

// ReminderSources covers reminder subscribers in both tables.
func ReminderSources() []Source {
	return []Source{
		{Table: TableUsers, Policy: PolicyReminders},
		{Table: TableAdmin, Policy: PolicyReminders},
	}
}

// Article is a newsletter article awaiting its announcement.
// Expiry is midnight UTC of the stored expiry date.
type Article struct {
	Expiry time.Time
	Title  string
	ID     int64
}

// Event is a calendar entry. Start and End carry the event date combined
// with the stored clock times.
type Event struct {
	Date       time.Time
	Start      time.Time
	End        time.Time
	Title      string
	Notes      string
	ID         int64
	IsPractice bool
}

// Kind identifies which notice an email carries.
type Kind string

const (
	KindArticle  Kind = "article"
	KindCalendar Kind = "calendar"
	KindReminder Kind = "reminder"
)

// Notice is a composed plain-text email without recipients.
type Notice struct {
	Kind    Kind
	Subject string
	Body    string
}
