package parser

import (
	"strings"

	"github.com/gluster/glustermgmt/pkg/api"
)

// ParseQuotaList parses `volume quota <vol> list` output:
//
//	                  Path                   Hard-limit Soft-limit   Used  Available  ...
//	---------------------------------------------------------------------------------
//	/                                        100.0MB       80%      0Bytes   100.0MB  ...
//
// Headers and separators are skipped; a "No quota configured" answer parses
// to an empty list.
func ParseQuotaList(raw []byte) []api.Quota {
	var quotas []api.Quota
	for _, line := range strings.Split(string(raw), "\n") {
		if line == "" || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "-") {
			continue
		}
		if strings.HasPrefix(line, "quota: No quota configured") {
			return nil
		}
		fields := strings.Fields(line)
		// Path Hard-limit Soft-limit Used Available ...
		if len(fields) <= 3 || !strings.HasPrefix(fields[0], "/") {
			continue
		}
		quotas = append(quotas, api.Quota{
			Path:  fields[0],
			Limit: parseSize(fields[1]),
			Used:  parseSize(fields[3]),
		})
	}
	return quotas
}
