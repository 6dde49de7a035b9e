package types

// CLIArgs represents the command-line arguments, after merging the config file.
type CLIArgs struct {
	ConfigFile         string
	APIURL             string
	Region             string
	Profile            string
	Live               bool
	StrictConfirmation bool
	Debug              bool
	TimeoutSeconds     int
	ReportName         string
	ReportType         []string
	Dir                string
}

// WantsExport reports whether a report file was requested.
func (a *CLIArgs) WantsExport() bool {
	return len(a.ReportType) > 0
}
