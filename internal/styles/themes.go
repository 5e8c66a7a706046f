package styles

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var themeMu sync.Mutex

// Theme is a named color palette.
type Theme struct {
	Name string

	Primary, Secondary, Accent       string
	Success, Warning, Error, Info    string
	TextPrimary, TextSecondary       string
	TextMuted, TextSubtle            string
	BgPrimary, BgSecondary           string
	BgTertiary                       string
	BorderNormal, BorderActive       string
	ToastSuccessText, ToastErrorText string

	// MarkdownTheme is the glamour standard style for previews.
	MarkdownTheme string
}

var themeRegistry = map[string]Theme{
	"dark": {
		Name: "dark",
		Primary: "#7C3AED", Secondary: "#3B82F6", Accent: "#F59E0B",
		Success: "#10B981", Warning: "#F59E0B", Error: "#EF4444", Info: "#3B82F6",
		TextPrimary: "#F9FAFB", TextSecondary: "#9CA3AF",
		TextMuted: "#6B7280", TextSubtle: "#4B5563",
		BgPrimary: "#111827", BgSecondary: "#1F2937", BgTertiary: "#374151",
		BorderNormal: "#374151", BorderActive: "#7C3AED",
		ToastSuccessText: "#000000", ToastErrorText: "#FFFFFF",
		MarkdownTheme: "dark",
	},
	"light": {
		Name: "light",
		Primary: "#6D28D9", Secondary: "#2563EB", Accent: "#B45309",
		Success: "#047857", Warning: "#B45309", Error: "#B91C1C", Info: "#2563EB",
		TextPrimary: "#111827", TextSecondary: "#374151",
		TextMuted: "#6B7280", TextSubtle: "#9CA3AF",
		BgPrimary: "#FFFFFF", BgSecondary: "#F3F4F6", BgTertiary: "#E5E7EB",
		BorderNormal: "#D1D5DB", BorderActive: "#6D28D9",
		ToastSuccessText: "#FFFFFF", ToastErrorText: "#FFFFFF",
		MarkdownTheme: "light",
	},
}

var currentTheme = "dark"

// ThemeNames returns the registered theme names, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themeRegistry))
	for name := range themeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurrentTheme returns the name of the applied theme.
func CurrentTheme() string {
	themeMu.Lock()
	defer themeMu.Unlock()
	return currentTheme
}

// ApplyTheme switches the package colors and styles to the named theme.
// Unknown names fall back to dark; the applied name is returned.
func ApplyTheme(name string) string {
	themeMu.Lock()
	defer themeMu.Unlock()

	t, ok := themeRegistry[name]
	if !ok {
		t = themeRegistry["dark"]
	}

	Primary = lipgloss.Color(t.Primary)
	Secondary = lipgloss.Color(t.Secondary)
	Accent = lipgloss.Color(t.Accent)
	Success = lipgloss.Color(t.Success)
	Warning = lipgloss.Color(t.Warning)
	Error = lipgloss.Color(t.Error)
	Info = lipgloss.Color(t.Info)
	TextPrimary = lipgloss.Color(t.TextPrimary)
	TextSecondary = lipgloss.Color(t.TextSecondary)
	TextMuted = lipgloss.Color(t.TextMuted)
	TextSubtle = lipgloss.Color(t.TextSubtle)
	BgPrimary = lipgloss.Color(t.BgPrimary)
	BgSecondary = lipgloss.Color(t.BgSecondary)
	BgTertiary = lipgloss.Color(t.BgTertiary)
	BorderNormal = lipgloss.Color(t.BorderNormal)
	BorderActive = lipgloss.Color(t.BorderActive)
	ToastSuccessTextColor = lipgloss.Color(t.ToastSuccessText)
	ToastErrorTextColor = lipgloss.Color(t.ToastErrorText)
	CurrentMarkdownTheme = t.MarkdownTheme

	rebuild()
	currentTheme = t.Name
	return t.Name
}
