package version

import "strings"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = ""
	Service   = "catalogadmin"
)

type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func Current() Info {
	out := Info{
		Service:   strings.TrimSpace(Service),
		Version:   strings.TrimSpace(Version),
		Commit:    strings.TrimSpace(Commit),
		BuildTime: strings.TrimSpace(BuildTime),
	}
	if out.Service == "" {
		out.Service = "catalogadmin"
	}
	if out.Version == "" {
		out.Version = "dev"
	}
	if out.Commit == "" {
		out.Commit = "unknown"
	}
	return out
}
