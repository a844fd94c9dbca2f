package constants

const (
	// Environment overrides
	EnvConfigFile         = "LIFEOS_CONFIG"
	EnvTimezone           = "LIFEOS_TIMEZONE"
	EnvStorageBackend     = "LIFEOS_STORAGE_BACKEND"
	EnvStoragePath        = "LIFEOS_STORAGE_PATH"
	EnvPersonalCalendar   = "LIFEOS_PERSONAL_CALENDAR_ID"
	EnvProfessionalCal    = "LIFEOS_PROFESSIONAL_CALENDAR_ID"
	EnvCheckinTime        = "LIFEOS_CHECKIN_TIME"
	EnvResetTime          = "LIFEOS_RESET_TIME"
	EnvCalendarTime       = "LIFEOS_CALENDAR_TIME"
	EnvTodoOffsetMinutes  = "LIFEOS_TODO_OFFSET_MINUTES"
	EnvWebAddr            = "LIFEOS_WEB_ADDR"
	EnvLogLevel           = "LIFEOS_LOG_LEVEL"
	EnvLogFormat          = "LIFEOS_LOG_FORMAT"
	EnvNotifyTransports   = "LIFEOS_NOTIFY"
	EnvDBConnection       = "LIFEOS_DB_CONNECTION"
	LegacyPersonalCalEnv  = "PERSONAL_CALENDAR_ID"
	LegacyProfessionalEnv = "PROFESSIONAL_CALENDAR_ID"

	// Destination names
	DestCheckin  = "daily-checkin"
	DestHabitLog = "habits-log"
	DestWeekly   = "weekly-summary"
	DestMonthly  = "monthly-summary"
	DestTodo     = "todo"
	DestDone     = "done"
	DestCalendar = "calendar-events"

	// Default Settings Values
	DefaultTimezone           = "Local"
	DefaultCheckinTime        = "09:30"
	DefaultCalendarTime       = "09:00"
	DefaultResetTime          = "22:30"
	DefaultPersonalCalendarID = "primary"
	DefaultListenAddr         = "127.0.0.1:8080"
	DefaultJSONFile           = "lifeos.json"
)
