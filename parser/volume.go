package parser

import (
	"regexp"
	"strings"

	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"

	"github.com/pborman/uuid"
)

// ParseVolumeList parses `volume list` output: one volume name per line.
func ParseVolumeList(raw []byte) []string {
	var names []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "No volumes present" {
			continue
		}
		names = append(names, line)
	}
	return names
}

// Brick count headers: "2", "1 x 2 = 2" or "1 x (2 + 1) = 3".
var (
	disperseCountRE  = regexp.MustCompile(`^(\d+)\s*x\s*\((\d+)\s*\+\s*(\d+)\)\s*=\s*(\d+)$`)
	replicateCountRE = regexp.MustCompile(`^(\d+)\s*x\s*(\d+)\s*=\s*(\d+)$`)
	plainCountRE     = regexp.MustCompile(`^(\d+)$`)
)

// volume info is line oriented with three sections per volume:
// header fields, "Bricks:" and "Options Reconfigured:".
type volInfoSection int

const (
	sectionRoot volInfoSection = iota
	sectionBricks
	sectionOptions
)

// ParseVolumeInfo parses `volume info` output, which may describe any number
// of volumes. "No volumes present" parses to an empty list; a "does not
// exist" answer maps to gerrors.ErrVolNotFound so callers can distinguish
// confirmed absence from parse trouble.
func ParseVolumeInfo(raw []byte) ([]api.Volume, error) {
	text := strings.TrimSpace(string(raw))
	if text == "No volumes present" {
		return nil, nil
	}
	if strings.HasPrefix(text, "Volume ") && strings.HasSuffix(text, " does not exist") {
		return nil, gerrors.ErrVolNotFound
	}

	var volumes []api.Volume
	var cur *api.Volume
	section := sectionRoot

	flush := func() {
		if cur != nil {
			volumes = append(volumes, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "Bricks:":
			section = sectionBricks
			continue
		case "Options Reconfigured:":
			section = sectionOptions
			continue
		}

		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			// not a field line; we don't know what this is
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if name == "Volume Name" {
			flush()
			cur = &api.Volume{
				Name:    value,
				Type:    api.UnknownVolType,
				Options: make(map[string]string),
			}
			section = sectionRoot
			continue
		}
		if cur == nil {
			continue
		}

		switch section {
		case sectionRoot:
			if err := parseVolInfoField(cur, name, value); err != nil {
				return nil, err
			}
		case sectionBricks:
			if !strings.HasPrefix(name, "Brick") {
				continue
			}
			host, path, ok := strings.Cut(value, ":")
			if !ok {
				return nil, &gerrors.ParseError{Kind: "volume-info", Fragment: snippet(line)}
			}
			cur.Bricks = append(cur.Bricks, api.Brick{
				Hostname: strings.TrimSpace(host),
				Path:     strings.TrimSpace(path),
				Status:   api.BrickUnknown,
			})
		case sectionOptions:
			cur.Options[name] = value
		}
	}
	flush()
	return volumes, nil
}

func parseVolInfoField(v *api.Volume, name, value string) error {
	switch name {
	case "Type":
		v.Type = api.ParseVolType(value)
	case "Volume ID":
		id := uuid.Parse(value)
		if id == nil {
			return &gerrors.ParseError{Kind: "volume-info", Fragment: value}
		}
		v.ID = id
	case "Status":
		v.State = api.ParseVolState(value)
		v.StateRaw = value
	case "Transport-type", "Transport-Type":
		v.Transport = value
	case "Number of Bricks":
		parseBrickCounts(v, value)
	}
	return nil
}

// parseBrickCounts fills the distribution counts from the "Number of Bricks"
// header. Unparsable layouts are left zero rather than failing the volume.
func parseBrickCounts(v *api.Volume, value string) {
	if m := disperseCountRE.FindStringSubmatch(value); m != nil {
		v.DistCount = parseInt(m[1])
		v.DisperseCount = parseInt(m[2]) + parseInt(m[3])
		return
	}
	if m := replicateCountRE.FindStringSubmatch(value); m != nil {
		v.DistCount = parseInt(m[1])
		v.ReplicaCount = parseInt(m[2])
		return
	}
	if m := plainCountRE.FindStringSubmatch(value); m != nil {
		v.DistCount = parseInt(m[1])
	}
}
