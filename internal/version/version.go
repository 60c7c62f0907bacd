package version

// Overridden at build time via -ldflags "-X".
var (
	AppName        = "Kurumi"
	AppDescription = "Discord bot with prefix commands and event handlers."
	AppVersion     = "dev"
	BuildDate      = "unknown"
)
