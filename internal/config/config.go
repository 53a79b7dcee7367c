package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultEndpoint is the PageSpeed Insights v5 API endpoint.
	// The API takes url, key, and strategy as query parameters and returns
	// the full Lighthouse result document.
	DefaultEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

	// DefaultTimeout is set to 60 seconds because a PageSpeed run is slow by
	// nature: the API loads the target page under simulated throttling before
	// responding. Shorter timeouts produce false failures for heavy pages.
	DefaultTimeout = 60 * time.Second

	// APIKeyEnvVar is the environment variable consulted when no explicit
	// API key is configured. An explicit value always wins over it.
	APIKeyEnvVar = "PAGESPEED_API_KEY"

	// AppName is the application name used for XDG directory paths.
	AppName = "psinsight"
)

// Config holds all configuration options for psinsight.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ClientConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// APIKey is the PageSpeed Insights API credential.
	// Resolved once at startup: an explicit value (flag or config file)
	// takes precedence over the PAGESPEED_API_KEY environment variable.
	// An empty key is not rejected up front; a request made without a valid
	// credential fails through the normal analysis failure path.
	APIKey string

	// Endpoint is the API endpoint URL. Overridable for testing.
	Endpoint string

	// Timeout is the HTTP timeout for each analysis request.
	Timeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .psinsight in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output instead of the terminal format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the terminal
	// format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// NoColor disables ANSI colors in the terminal report.
	NoColor bool

	// URLs is the list of page URLs to analyze.
	// Populated from positional arguments, falling back to the config file.
	URLs []string

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to save analysis results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (endpoint, timeout).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Timeout:  DefaultTimeout,
		SaveToDB: true,
	}
}

// XDGDataDir returns the XDG data directory for psinsight.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/psinsight
// On macOS: ~/Library/Application Support/psinsight
// On Windows: %LOCALAPPDATA%\psinsight
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for psinsight.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ResolveAPIKey applies the credential precedence rule: the explicit value
// wins; the environment variable is the fallback. The result may be empty.
func ResolveAPIKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(APIKeyEnvVar)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return ErrNoURL
	}

	for _, raw := range c.URLs {
		if !isAbsoluteHTTPURL(raw) {
			return ErrInvalidURL
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// isAbsoluteHTTPURL reports whether raw parses as an absolute http(s) URL.
func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
