package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile string
	APIURL     string
	Debug      bool
	StartDate  string
	EndDate    string
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
	ReportName string
	ReportType []string
	Dir        string
}
