package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client against the public APIs (Nominatim
// requires a descriptive User-Agent for all requests).
var UserAgent = "Go-Salat/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Salat"
	AppID             = "com.github.tartampluch.go-salat"
	KeyringService    = "com.github.tartampluch.go-salat"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for the log file and the schedule cache.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 600
	MainWindowWidth     = 720
	MainWindowHeight    = 420
	CityWindowWidth     = 480
	CityWindowHeight    = 420

	// Preference Keys
	PrefLanguage       = "language"
	PrefMethod         = "calc_method"
	PrefSchool         = "asr_school"
	PrefLatitude       = "location_latitude"
	PrefLongitude      = "location_longitude"
	PrefCityName       = "location_name"
	PrefReminders      = "reminders_enabled"
	PrefReminderMin    = "reminder_minutes"
	PrefAdhanEnabled   = "adhan_enabled"
	PrefAdhanFile      = "adhan_file"
	PrefAdhanVolume    = "adhan_volume_pct"
	PrefFeedPort       = "feed_port"
	PrefAudioTokenURL  = "audio_token_url"
	PrefAudioMediaURL  = "audio_media_url"
	PrefAudioClientID  = "audio_client_id"
	PrefLastRun        = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinSettings    = "win_settings_title"
	TKeyWinCity        = "win_city_title"
	TKeyMenuShow       = "menu_show"
	TKeyMenuRefresh    = "menu_refresh"
	TKeyMenuSettings   = "menu_settings"
	TKeyNotifRefreshed = "notif_refreshed"
	TKeyNotifError     = "notif_err_refresh"
	TKeyNotifTestTitle = "notif_test_title"
	TKeyNotifTestBody  = "notif_test_body"
	TKeyCountdownNext  = "countdown_next"      // Requires Prayer, Hours, Minutes
	TKeyCountdownSecs  = "countdown_seconds"   // Requires Prayer, Seconds
	TKeyCountdownNow   = "countdown_now"       // Requires Prayer
	TKeyNotifTitle     = "notif_prayer_title"  // Requires Prayer
	TKeyNotifBody      = "notif_prayer_body"   // Requires Prayer, Time
	TKeyLblLanguage    = "lbl_language"
	TKeyHelpLanguage   = "help_language"
	TKeyLblMethod      = "lbl_method"
	TKeyHelpMethod     = "help_method"
	TKeyLblGeneral     = "lbl_general"
	TKeyLblReminders   = "lbl_enable_reminders"
	TKeyLblReminderMin = "lbl_reminder_minutes"
	TKeyLblMinutes     = "lbl_minutes_suffix"
	TKeyLblAdhan       = "lbl_adhan"
	TKeyLblEnableAdhan = "lbl_enable_adhan"
	TKeyLblAdhanFile   = "lbl_adhan_file"
	TKeyHelpAdhanFile  = "help_adhan_file"
	TKeyLblVolume      = "lbl_volume"
	TKeyLblFeedPort    = "lbl_feed_port"
	TKeyHelpFeedPort   = "help_feed_port"
	TKeyLblAudioAPI    = "lbl_audio_api"
	TKeyLblClientID    = "lbl_client_id"
	TKeyLblClientSec   = "lbl_client_secret"
	TKeyHelpAudioAPI   = "help_audio_api"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyBtnBrowse      = "btn_browse"
	TKeyBtnTestNotif   = "btn_test_notification"
	TKeyBtnChangeCity  = "btn_change_city"
	TKeyBtnLocate      = "btn_locate"
	TKeyBtnNearby      = "btn_nearby"
	TKeyBtnPlayPause   = "btn_play_pause"
	TKeyBtnReplay      = "btn_replay"
	TKeyLblSearchCity  = "lbl_search_city"
	TKeyLblNoResults   = "lbl_no_results"
	TKeyLblTypeMore    = "lbl_type_more"
	TKeyLblUnavailable = "lbl_unavailable"
	TKeyLblFooter      = "lbl_footer"
	TKeyLblDuaTitle    = "lbl_dua_title"
	TKeyErrPortReq     = "err_port_required"
	TKeyErrPortNum     = "err_port_number"
	TKeyErrPortRange   = "err_port_range"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	// DefaultMethod is calculation method 12 (Union des Organisations
	// Islamiques de France, 12 degrees Fajr angle) for the French deployment.
	DefaultMethod = 12

	// SchoolUnset means the asr juristic school parameter is omitted from
	// provider requests and the provider default applies.
	SchoolUnset = -1

	// ActiveWindowMinutes is how long a prayer stays "now" after its start.
	ActiveWindowMinutes = 15

	// DefaultReminderMinutes is the pre-notification lead time.
	DefaultReminderMinutes = 5

	// MaxCitySuggestions caps the search result list shown to the user.
	MaxCitySuggestions = 5

	// MinQueryLength is the minimum city search input length.
	MinQueryLength = 2

	// SearchDebounce delays geocoding calls until typing has settled.
	SearchDebounce = 500 * time.Millisecond

	// DuaWindow is how long the post-adhan invocation panel stays visible.
	DuaWindow = 10 * time.Minute

	// TickInterval drives the countdown engine.
	TickInterval = 1 * time.Second

	// RefreshRetryDelay spaces out schedule refresh attempts after a failure,
	// so a stale schedule does not turn every tick into a network call.
	RefreshRetryDelay = 30 * time.Second

	DefaultLanguage    = "fr"
	DefaultFeedPort    = "18380"
	DefaultAdhanVolume = 80 // percent

	// TokenExpiryBuffer is subtracted from the OAuth2 token lifetime so a
	// token is never used within its final moments.
	TokenExpiryBuffer = 30 * time.Second
)

// Fallback location for when geolocation is unavailable or denied. This is a
// deliberate choice for the single-market (France) deployment.
const (
	FallbackLatitude  = 48.8566
	FallbackLongitude = 2.3522
	FallbackCityName  = "Paris (par défaut)"
	DetectedCityName  = "Votre position"
)

// Date & time layouts.
const (
	DateKeyLayout      = "2006-01-02" // schedule cache key
	ProviderDateLayout = "02-01-2006" // aladhan path segment (DD-MM-YYYY)
	ClockLayout        = "15:04"
)

// CalculationMethods maps provider method IDs to their display names, in menu
// order. UOIF is the recommended convention for France.
var CalculationMethods = []struct {
	ID   int
	Name string
}{
	{1, "University of Islamic Sciences, Karachi"},
	{2, "Islamic Society of North America (ISNA) - 15°"},
	{3, "Muslim World League (MWL) - 18°"},
	{4, "Umm Al-Qura University, Makkah"},
	{5, "Egyptian General Authority of Survey - 19.5°"},
	{7, "Institute of Geophysics, University of Tehran - 17.7°"},
	{12, "Union Organization Islamic de France (UOIF) - 12°"},
	{13, "Majlis Ugama Islam Singapura, Singapore"},
	{15, "Moonsighting Committee Worldwide"},
}

// -----------------------------------------------------------------------------
// External Services
// -----------------------------------------------------------------------------

const (
	AladhanBaseURL       = "https://api.aladhan.com/v1"
	NominatimBaseURL     = "https://nominatim.openstreetmap.org"
	NominatimCountryCode = "fr"
	NominatimRawLimit    = 10 // fetched before dedup; MaxCitySuggestions after
	GeoIPURL             = "http://ip-api.com/json/?fields=status,message,lat,lon,city"

	// Adhan audio candidates, tried in order after the user's custom file and
	// the optional authenticated media URL.
	AdhanURLDefault = "https://cdn.islamic.network/quran/audio/adhan/ar.mp3"
	AdhanURLFajr    = "https://ia600602.us.archive.org/34/items/guantanamo_adhan/ssstik.io_1768862688567.mp3"

	OAuthGrantClientCredentials = "client_credentials"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 10 * time.Second
	GeoIPTimeout       = 5 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	RouteRoot          = "/"
	AddrSeparator      = ":"

	MinPort = 1
	MaxPort = 65535
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeForm            = "application/x-www-form-urlencoded"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// iCalendar Feed
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Salat//Feed//FR"
	ICalCalName = "Horaires de prières"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gosalat"

	PropUID        = "UID"
	PropRefresh    = "REFRESH-INTERVAL"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropLocation   = "LOCATION"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	FormatUID = "%s-%s@%s" // date-prayer@domain

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup  = "feed server startup failed"
	ErrServerShutdown = "feed server shutdown failed"
	ErrPortRequired   = "feed port is required"
	ErrLatRange       = "latitude out of range [-90, 90]"
	ErrLonRange       = "longitude out of range [-180, 180]"
	ErrTimeFormat     = "invalid time-of-day format"
	ErrICalEncode     = "failed to encode iCalendar feed"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrTrayMissing    = "system tray not supported on this platform/driver"
	ErrLocNotInit     = "localizer not initialized"
	ErrNoAudioPlayer  = "no audio player command found on PATH"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Schedule initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	// French display fallbacks used when the localizer is unavailable. The
	// countdown formats mirror the on-screen banner wording.
	FallbackUpcoming     = "Prochain: %s dans %dh %dm"
	FallbackUpcomingSecs = "Prochain: %s dans %ds"
	FallbackActive       = "%s - MAINTENANT"
	FallbackNotifTitle   = "🕌 Prière: %s"
	FallbackNotifBody    = "Il est %s - C'est l'heure de la prière de %s"
	FallbackReminderBody = "La prière de %s commence dans %d minutes"
	FallbackTrayLabel    = "Go Salat"
	FallbackSchedule     = "Horaires indisponibles"

	TitleStartupError = "Startup Error"
	TitleRefreshError = "Refresh Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgRefreshReq      = "Schedule refresh requested"
	MsgRefreshOK       = "Schedule refreshed"
	MsgRefreshFailed   = "Schedule refresh failed. Check logs."
	MsgSchedulerStart  = "Tick scheduler started"
	MsgSchedulerStop   = "Tick scheduler stopping due to context cancellation"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "Feed server listening"
	MsgServerStop      = "Shutting down feed server..."
	MsgFeedUpdated     = "Feed cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded"
	MsgTransMissing    = "Missing translation key"
	MsgSecretFail      = "Client secret retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgAdhanTriggered  = "Adhan triggered"
	MsgReminderFired   = "Pre-notification fired"
	MsgNotifyFailed    = "Notification delivery failed"
	MsgPlaybackFailed  = "Adhan playback failed"
	MsgScheduleSet     = "Schedule installed"
	MsgCacheHit        = "Schedule served from cache"
	MsgCacheMiss       = "Schedule fetched from provider"
	MsgCacheSaveFailed = "Could not persist schedule cache"
	MsgCacheReadFailed = "Could not read schedule cache entry"
	MsgGeoFallback     = "Geolocation unavailable, using fallback location"
	MsgCitySearch      = "City search completed"
	MsgLocationSet     = "Location updated"
	MsgPlaybackStart   = "Audio playback started"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyDate      = "date"
	LogKeyPrayer    = "prayer"
	LogKeyTime      = "time"
	LogKeyCity      = "city"
	LogKeyLatitude  = "latitude"
	LogKeyLongitude = "longitude"
	LogKeyMethod    = "method"
	LogKeyQuery     = "query"
	LogKeyCount     = "count"
	LogKeySource    = "source"
	LogKeyManual    = "manual"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompUISet    = "ui_settings"
	CompUICity   = "ui_city"
	CompEngine   = "engine"
	CompCache    = "schedule_cache"
	CompProvider = "provider"
	CompResolver = "location"
	CompNotify   = "notify"
	CompPlayer   = "player"
	CompServer   = "feed"
	CompMain     = "main"
	CompI18n     = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
	LayoutColumnsGrid   = 5 // one card per main prayer
)
