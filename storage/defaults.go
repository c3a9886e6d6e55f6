package storage

import (
	"commando/model"
	"commando/platform"
)

func card(number int, title, command, icon, color, category, description string) model.Command {
	c := model.New(number, title, command)
	c.Icon = icon
	c.Color = color
	c.Category = category
	c.Description = description
	return c
}

// DefaultCommands returns the base catalog seeded into an empty store.
func DefaultCommands() []model.Command {
	return []model.Command{
		card(1, "Disk Usage", "df -h", "drive-harddisk-symbolic", "blue", "System",
			"Show disk space usage for all mounted filesystems"),
		card(2, "Memory Usage", "free -h", "memory-symbolic", "blue", "System",
			"Display memory usage information"),
		card(3, "System Uptime", "uptime", "preferences-system-time-symbolic", "blue", "System",
			"Show how long the system has been running"),
		card(4, "Process List", "ps aux --sort=-%mem | head -20", "utilities-system-monitor-symbolic", "blue", "System",
			"Show top processes by memory usage"),

		card(5, "Update Packages (Fedora)", "sudo dnf update", "software-update-available-symbolic", "green", "Packages",
			"Update all installed packages (Fedora/RHEL)"),
		card(6, "Update Packages (Debian/Ubuntu)", "sudo apt update && sudo apt upgrade", "software-update-available-symbolic", "green", "Packages",
			"Update all installed packages (Debian/Ubuntu)"),
		card(7, "Update Packages (Arch)", "sudo pacman -Syu", "software-update-available-symbolic", "green", "Packages",
			"Update all installed packages (Arch Linux)"),
		card(8, "Search Package (Fedora)", "dnf search ", "system-search-symbolic", "green", "Packages",
			"Search for packages (add search term after command)"),

		card(9, "Find Files", "find . -name ", "system-file-manager-symbolic", "yellow", "Files",
			"Find files by name (add pattern after command)"),
		card(10, "Search in Files", "grep -r ", "edit-find-symbolic", "yellow", "Files",
			"Search for text in files (add search term after command)"),
		card(11, "List Large Files", `find . -type f -size +100M -exec ls -lh {} \;`, "document-open-symbolic", "yellow", "Files",
			"Find files larger than 100MB"),
		card(12, "Disk Usage by Directory", "du -h --max-depth=1 | sort -hr | head -10", "folder-symbolic", "yellow", "Files",
			"Show disk usage by directory"),

		card(13, "Check IP Address", "ip addr show", "network-wired-symbolic", "purple", "Network",
			"Display network interface information"),
		card(14, "Ping Host", "ping -c 4 ", "network-workgroup-symbolic", "purple", "Network",
			"Ping a host (add hostname after command)"),
		card(15, "Open Ports", "sudo ss -tulpn", "network-server-symbolic", "purple", "Network",
			"Show listening ports and services"),
		card(16, "Network Speed Test", "curl -o /dev/null -s -w '%{speed_download}\\n' http://speedtest.tele2.net/10MB.zip", "network-workgroup-symbolic", "purple", "Network",
			"Simple network speed test"),

		card(17, "System Status", "systemctl status ", "preferences-system-symbolic", "orange", "Services",
			"Check service status (add service name after command)"),
		card(18, "System Logs", "journalctl -xe", "text-editor-symbolic", "orange", "Services",
			"View recent system logs"),
		card(19, "Service Logs", "journalctl -u ", "text-editor-symbolic", "orange", "Services",
			"View logs for a service (add service name after command)"),
		card(20, "List Failed Services", "systemctl --failed", "dialog-error-symbolic", "red", "Services",
			"Show failed systemd services"),

		card(21, "Git Status", "git status", "folder-git-symbolic", "pink", "Git",
			"Show the working tree status"),
		card(22, "Git Log", "git log --oneline --graph --decorate -20", "document-new-symbolic", "pink", "Git",
			"Show recent git commits"),
		card(23, "Git Branch List", "git branch -a", "folder-git-symbolic", "pink", "Git",
			"List all local and remote branches"),
		card(24, "Git Diff", "git diff", "text-editor-symbolic", "pink", "Git",
			"Show changes in working directory"),

		card(25, "Python Version", "python --version", "applications-development-symbolic", "brown", "Development",
			"Check Python version"),
		card(26, "List Python Packages", "pip list", "applications-development-symbolic", "brown", "Development",
			"List installed Python packages"),
		card(27, "Node Version", "node --version && npm --version", "applications-development-symbolic", "brown", "Development",
			"Check Node.js and npm versions"),
		card(28, "Environment Variables", "env | sort", "preferences-system-symbolic", "gray", "System",
			"List all environment variables"),

		card(29, "Clear Terminal", "clear", "edit-clear-symbolic", "gray", "Utilities",
			"Clear the terminal screen"),
		card(30, "Current Directory", "pwd", "folder-symbolic", "gray", "Utilities",
			"Print current working directory"),
		card(31, "List Directory Contents", "ls -lah", "folder-open-symbolic", "gray", "Utilities",
			"List files with details"),
		card(32, "History", "history | tail -20", "document-open-recent-symbolic", "gray", "Utilities",
			"Show recent command history"),
	}
}

// searchCards replaces the package search card for the detected family.
var searchCards = map[platform.Family]struct{ title, command, description string }{
	platform.FamilyDebian: {"Search Package (Debian/Ubuntu)", "apt search ", "Search for packages (Debian/Ubuntu)"},
	platform.FamilyArch:   {"Search Package (Arch)", "pacman -Ss ", "Search for packages (Arch Linux)"},
	platform.FamilySUSE:   {"Search Package (openSUSE)", "zypper search ", "Search for packages (openSUSE/SUSE)"},
}

const searchCardNumber = 8

// Catalog returns the default catalog adjusted for dist. Unknown and
// Fedora-family hosts get the base catalog unchanged.
func Catalog(dist platform.Distribution) []model.Command {
	cmds := DefaultCommands()
	if s, ok := searchCards[dist.Family()]; ok {
		for i := range cmds {
			if cmds[i].Number == searchCardNumber {
				cmds[i].Title = s.title
				cmds[i].Command = s.command
				cmds[i].Description = s.description + " (add search term after command)"
			}
		}
	}
	return cmds
}
