package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - default dark theme
var (
	// Primary colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#3B82F6") // Blue
	Accent    = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
	Info    = lipgloss.Color("#3B82F6") // Blue

	// Text colors
	TextPrimary   = lipgloss.Color("#F9FAFB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")
	TextSubtle    = lipgloss.Color("#4B5563")

	// Background colors
	BgPrimary   = lipgloss.Color("#111827")
	BgSecondary = lipgloss.Color("#1F2937")
	BgTertiary  = lipgloss.Color("#374151")

	// Border colors
	BorderNormal = lipgloss.Color("#374151")
	BorderActive = lipgloss.Color("#7C3AED")

	ToastSuccessTextColor = lipgloss.Color("#000000")
	ToastErrorTextColor   = lipgloss.Color("#FFFFFF")

	// CurrentMarkdownTheme is the glamour style used for note previews.
	CurrentMarkdownTheme = "dark"
)

// Panel styles
var (
	// Active panel with highlighted border
	PanelActive lipgloss.Style

	// Inactive panel with subtle border
	PanelInactive lipgloss.Style

	PanelHeader lipgloss.Style
)

// Text styles
var (
	Title    lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style
	KeyHint  lipgloss.Style
	Logo     lipgloss.Style
	Modified lipgloss.Style
)

// Toast styles for status messages
var (
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
)

// List item styles
var (
	ListItemNormal   lipgloss.Style
	ListItemSelected lipgloss.Style
	ListCursor       lipgloss.Style
	SectionHeader    lipgloss.Style
)

// Bar element styles (shared by header/footer)
var (
	BarText       lipgloss.Style
	BarChip       lipgloss.Style
	BarChipActive lipgloss.Style
	Footer        lipgloss.Style
)

// Note content styles
var (
	// Starred lines in the sidebar task list and preview gutter
	Star lipgloss.Style
	// Completed tasks
	TaskDone lipgloss.Style
	TaskOpen lipgloss.Style
	// Line numbers in the editor gutter
	LineNumber lipgloss.Style
	// Attachment chips
	Attachment lipgloss.Style
	// Fuzzy match character highlighting
	FuzzyMatchChar lipgloss.Style
)

// Modal styles
var (
	ModalBox   lipgloss.Style
	ModalTitle lipgloss.Style
	Button     lipgloss.Style
	// ButtonFocused is the selected button in a dialog.
	ButtonFocused lipgloss.Style
	// Danger button styles (for destructive actions like delete)
	ButtonDanger        lipgloss.Style
	ButtonDangerFocused lipgloss.Style
)

func init() {
	rebuild()
}

// rebuild recreates every style from the current colors.
func rebuild() {
	PanelActive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderActive).
		Padding(0, 1)
	PanelInactive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderNormal).
		Padding(0, 1)
	PanelHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)
	Body = lipgloss.NewStyle().
		Foreground(TextPrimary)
	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
	Subtle = lipgloss.NewStyle().
		Foreground(TextSubtle)
	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)
	Logo = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	Modified = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)

	ToastSuccess = lipgloss.NewStyle().
		Background(Success).
		Foreground(ToastSuccessTextColor).
		Bold(true).
		Padding(0, 1)
	ToastError = lipgloss.NewStyle().
		Background(Error).
		Foreground(ToastErrorTextColor).
		Bold(true).
		Padding(0, 1)

	ListItemNormal = lipgloss.NewStyle().
		Foreground(TextPrimary)
	ListItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(BgTertiary)
	ListCursor = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	SectionHeader = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	BarText = lipgloss.NewStyle().
		Foreground(TextMuted)
	BarChip = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)
	BarChipActive = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Primary).
		Padding(0, 1).
		Bold(true)
	Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgSecondary)

	Star = lipgloss.NewStyle().
		Foreground(Accent)
	TaskDone = lipgloss.NewStyle().
		Foreground(TextMuted).
		Strikethrough(true)
	TaskOpen = lipgloss.NewStyle().
		Foreground(TextPrimary)
	LineNumber = lipgloss.NewStyle().
		Foreground(TextSubtle).
		Width(4).
		AlignHorizontal(lipgloss.Right)
	Attachment = lipgloss.NewStyle().
		Foreground(Secondary).
		Background(BgSecondary).
		Padding(0, 1)
	FuzzyMatchChar = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Background(BgSecondary).
		Padding(1, 2)
	ModalTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		MarginBottom(1)
	Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(BgTertiary).
		Padding(0, 2)
	ButtonFocused = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Primary).
		Padding(0, 2).
		Bold(true)
	ButtonDanger = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FCA5A5")). // Light red text
		Background(lipgloss.Color("#7F1D1D")). // Dark red background
		Padding(0, 2)
	ButtonDangerFocused = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#DC2626")).
		Padding(0, 2).
		Bold(true)
}
