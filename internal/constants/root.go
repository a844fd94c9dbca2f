package constants

import "time"

// TodoType represents how a todo is scheduled
type TodoType string

// TodoStatus represents the lifecycle state of a stored todo
type TodoStatus string

// Priority represents the user-assigned priority of a todo
type Priority string

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

// UrgencyTier is the three-level indicator derived from an urgency score
type UrgencyTier string

const (
	AppName            = "lifeos"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/lifeos"
	DefaultConfigFile  = "lifeos.toml"
	DefaultDBFile      = "lifeos.db"
	Version            = "v0.3.0"

	// Log files rotate under <config dir>/logs
	LogDirName      = "logs"
	LogFileName     = "lifeos.log"
	LogMaxSizeMB    = 10
	LogMaxBackups   = 3
	LogMaxAgeDays   = 28
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatLogfmt = "logfmt"

	// Backups are kept in this directory under the config directory
	BackupDirName = "backups"
	// MaxBackups is how many backups are kept before the oldest are pruned
	MaxBackups = 10

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is used for next-due values that carry a time of day
	DateTimeFormat = "2006-01-02T15:04"

	// EventTimeFormat is how calendar event times are shown to the user
	EventTimeFormat = "Mon, Jan 02 at 15:04"
	EventDateFormat = "Mon, Jan 02"

	// Todo Type constants
	TodoOneTime   TodoType = "one-time"
	TodoRecurring TodoType = "recurring"
	TodoFuture    TodoType = "future"

	// Todo Status constants
	TodoPending TodoStatus = "pending"
	TodoDone    TodoStatus = "done"

	// Priority constants
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	// Ticket Status constants
	TicketOpen TicketStatus = "open"
	TicketDone TicketStatus = "done"

	// Urgency tiers
	TierHigh   UrgencyTier = "high"
	TierMedium UrgencyTier = "medium"
	TierLow    UrgencyTier = "low"

	// Frequency descriptors
	FrequencyDaily = "daily"

	// DefaultEventTitle is used when an event phrase leaves no title behind
	DefaultEventTitle = "Calendar Event"
	// DefaultEventDuration is the length of events created from chat
	DefaultEventDuration = time.Hour

	// MonthDays is the fixed length of a "month" in interval arithmetic
	MonthDays = 30

	// Sheet names
	SheetTodos   = "todos"
	SheetHabits  = "habits"
	SheetTickets = "tickets"
	SheetEvents  = "events"

	// Reactions
	ReactionDone    = "✅"
	ReactionPending = "⏳"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "lifeos-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.lifeos"
	TrayExecutablePrefix   = "lifeos-tray"

	// Scheduler constants
	SchedulerTick         = time.Minute
	ReminderWindowHorizon = 24 * time.Hour
	DailyCalendarDays     = 2
	WeeklyCalendarDays    = 14
	WeeklyBarCells        = 7
	MonthlyBarCells       = 10
)

// TodoHeader is the header row of the todos sheet
var TodoHeader = []string{"id", "content", "status", "created_at", "completed_at", "deadline", "type", "frequency", "next_due", "priority", "tags"}

// HabitHeader is the header row of the habits sheet
var HabitHeader = []string{"date", "habit", "completed"}

// TicketHeader is the header row of the tickets sheet
var TicketHeader = []string{"id", "project_id", "title", "status", "created_at", "completed_at"}

// EventHeader is the header row of the events sheet
var EventHeader = []string{"id", "calendar_id", "title", "start", "end", "created_at"}
