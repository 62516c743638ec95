package parser

import (
	"testing"

	"github.com/gluster/glustermgmt/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quotaListOut = `
                  Path                   Hard-limit  Soft-limit      Used  Available  Soft-limit exceeded? Hard-limit exceeded?
-------------------------------------------------------------------------------------------------------------------------------
/ 1.0KB  80%(819Bytes)   0Bytes   1.0KB              No                   No
/backups 100.0MB  80%(80.0MB)   25.0MB   75.0MB      No                   No
`

func TestParseQuotaList(t *testing.T) {
	quotas := ParseQuotaList([]byte(quotaListOut))
	require.Len(t, quotas, 2)

	assert.Equal(t, api.Quota{Path: "/", Limit: 1000, Used: 0}, quotas[0])
	assert.Equal(t, "/backups", quotas[1].Path)
	assert.Equal(t, uint64(100*1000*1000), quotas[1].Limit)
	assert.Equal(t, uint64(25*1000*1000), quotas[1].Used)
}

func TestParseQuotaListNoneConfigured(t *testing.T) {
	out := "quota: No quota configured on volume test\n"
	assert.Empty(t, ParseQuotaList([]byte(out)))
}

func TestParseQuotaListEmpty(t *testing.T) {
	assert.Empty(t, ParseQuotaList(nil))
}
