package version

// Set with -ldflags "-X github.com/keshon/lotr-bot/internal/version.BuildVersion=..."
var (
	AppName        = "LOTR Bot"
	AppDescription = "Custom commands, blacklists and server settings for Discord guilds."
	BuildVersion   = "dev"
)
