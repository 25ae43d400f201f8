package submit

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/telcoops/siteaudit/internal/record"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// FileName derives the archive file name from project info:
// {code}_{site}_{yyyymmdd}_Audit.pdf with everything outside [A-Za-z0-9]
// stripped from code and site. Empty fields fall back to UNKNOWN / Site /
// today so the name is always well formed.
func FileName(info record.ProjectInfo, now time.Time) string {
	code := info.ProjectCode
	if code == "" {
		code = "UNKNOWN"
	}
	site := info.SiteName
	if site == "" {
		site = "Site"
	}
	date := info.AuditDate
	if date == "" {
		date = now.Format("2006-01-02")
	}
	return fmt.Sprintf("%s_%s_%s_Audit.pdf",
		nonAlnum.ReplaceAllString(code, ""),
		nonAlnum.ReplaceAllString(site, ""),
		strings.ReplaceAll(date, "-", ""))
}
