package parser

import (
	"regexp"
	"strings"

	"github.com/gluster/glustermgmt/pkg/api"
)

// Brick rows of `volume status` output:
//
//	Brick 172.31.46.33:/mnt/xvdf    49152    0    Y    14228
//
// Ports and pid may be reported as N/A while a brick is coming up.
var brickStatusRE = regexp.MustCompile(
	`Brick\s+(\S+?):(/\S+)\s+(\d+|N/A)\s+(\d+|N/A)\s+([YN])\s+(\d+|N/A|-)`)

// ParseVolumeStatus parses the brick table of `volume status` output.
// Daemon rows (self-heal, quota) and task sections are ignored; only brick
// availability is modeled.
func ParseVolumeStatus(raw []byte) []api.Brick {
	var bricks []api.Brick
	for _, m := range brickStatusRE.FindAllStringSubmatch(string(raw), -1) {
		b := api.Brick{
			Hostname: m[1],
			Path:     m[2],
			Port:     parseInt(m[3]),
			Pid:      parseInt(m[6]),
		}
		switch m[5] {
		case "Y":
			b.Status = api.BrickOnline
		case "N":
			b.Status = api.BrickOffline
		default:
			b.Status = api.BrickUnknown
		}
		bricks = append(bricks, b)
	}
	return bricks
}

// ParseRebalanceStatus parses `volume rebalance <name> status` output, a
// per-node progress table:
//
//	Node  Rebalanced-files  size  scanned  failures  skipped  status  run time in h:m:s
//	---------  ...
//	localhost  12  1.0KB  120  0  0  in progress  0:02:11
func ParseRebalanceStatus(raw []byte) []api.RebalanceNodeStatus {
	var nodes []api.RebalanceNodeStatus
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		// header and trailing result lines
		if strings.HasPrefix(line, "Node") || strings.HasPrefix(line, "volume rebalance") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 8 {
			continue
		}

		// status may span several fields ("in progress", "not started");
		// the run time is always the last field
		stateRaw := strings.Join(fields[6:len(fields)-1], " ")
		nodes = append(nodes, api.RebalanceNodeStatus{
			Node:       fields[0],
			Rebalanced: parseCount(fields[1]),
			Size:       parseSize(fields[2]),
			Scanned:    parseCount(fields[3]),
			Failures:   parseCount(fields[4]),
			Skipped:    parseCount(fields[5]),
			State:      api.ParseRebalanceState(stateRaw),
			StateRaw:   stateRaw,
			Runtime:    fields[len(fields)-1],
		})
	}
	return nodes
}
