package bot

// Command constants for Telegram bot commands.
const (
	CommandStart    = "/start"
	CommandLink     = "/link"
	CommandUnlink   = "/unlink"
	CommandProfile  = "/profile"
	CommandTemplate = "/template"
	CommandHelp     = "/help"
)
