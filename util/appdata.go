package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

// AppDataDir returns an operating system specific directory to be used for
// storing application data for an application.
//
// The appName parameter is the name of the application the data directory
// is being requested for. This function will prepend a period to the
// appName for POSIX style operating systems since that is standard
// practice. An empty appName or one with a single dot is treated as
// requesting the current directory so only "." will be returned. Further,
// the first character of appName will be made lowercase for POSIX style
// operating systems and uppercase for Mac and Windows style.
//
// The roaming parameter only applies to Windows where it specifies the
// roaming application data profile (%APPDATA%) should be used instead of
// the local one (%LOCALAPPDATA%).
func AppDataDir(appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}

	// Strip the leading period if the caller already provided one.
	appName = strings.TrimPrefix(appName, ".")
	appNameUpper := string(unicode.ToUpper(rune(appName[0]))) + appName[1:]
	appNameLower := string(unicode.ToLower(rune(appName[0]))) + appName[1:]

	homeDir := ""
	if usr, err := os.UserHomeDir(); err == nil {
		homeDir = usr
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if roaming || appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData != "" {
			return filepath.Join(appData, appNameUpper)
		}

	case "darwin":
		if homeDir != "" {
			return filepath.Join(homeDir, "Library", "Application Support", appNameUpper)
		}

	case "plan9":
		if homeDir != "" {
			return filepath.Join(homeDir, appNameLower)
		}

	default:
		if homeDir != "" {
			return filepath.Join(homeDir, "."+appNameLower)
		}
	}

	// Fall back to the current directory if all else fails.
	return "."
}
