package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the mtpget home directory.
const HomeEnv = "MTPGET_HOME"

// GetHome returns the mtpget home directory
// Priority order:
//  1. MTPGET_HOME environment variable (if set)
//  2. $XDG_CONFIG_HOME/mtpget
//  3. ~/.config/mtpget
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}

	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		base = filepath.Join(userHome, ".config")
	}

	home := filepath.Join(base, "mtpget")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create mtpget home directory: %w", err)
	}

	return home, nil
}
