package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	APIURL             string   `json:"api_url" yaml:"api_url" toml:"api_url"`
	Region             string   `json:"region" yaml:"region" toml:"region"`
	Profile            string   `json:"profile" yaml:"profile" toml:"profile"`
	Live               bool     `json:"live" yaml:"live" toml:"live"`
	StrictConfirmation bool     `json:"strict_confirmation" yaml:"strict_confirmation" toml:"strict_confirmation"`
	TimeoutSeconds     int      `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	ReportName         string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType         []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir                string   `json:"dir" yaml:"dir" toml:"dir"`
}

// SupportedRegions are the regions offered by the credential form.
var SupportedRegions = []string{
	"us-east-1",
	"us-west-2",
	"eu-west-1",
	"eu-central-1",
	"ap-northeast-1",
	"ap-southeast-1",
}

// SupportedReportTypes lists the export formats.
var SupportedReportTypes = []string{"json", "csv", "pdf"}
