package deployment

import (
	"strconv"
	"strings"

	"helm.sh/helm/v3/pkg/release"
)

var releaseColumns = []string{"NAME", "NAMESPACE", "REVISION", "UPDATED", "STATUS", "CHART", "APP VERSION"}

var releaseStatuses = map[release.Status]bool{
	release.StatusUnknown:         true,
	release.StatusDeployed:        true,
	release.StatusUninstalled:     true,
	release.StatusSuperseded:      true,
	release.StatusFailed:          true,
	release.StatusUninstalling:    true,
	release.StatusPendingInstall:  true,
	release.StatusPendingUpgrade:  true,
	release.StatusPendingRollback: true,
}

//Release is one row of the deployment tool's list output
type Release struct {
	Name       string         `json:"name" yaml:"name"`
	Namespace  string         `json:"namespace" yaml:"namespace"`
	Revision   int            `json:"revision" yaml:"revision"`
	Updated    string         `json:"updated" yaml:"updated"`
	Status     release.Status `json:"status" yaml:"status"`
	Chart      string         `json:"chart" yaml:"chart"`
	AppVersion string         `json:"appVersion" yaml:"appVersion"`
}

//ParseReleases converts tab separated list output into releases. A header without rows is an empty list.
func ParseReleases(output string) ([]*Release, error) {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")

	header := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, &ParseError{Line: 1, Content: output, Reason: "header missing"}
	}
	if !isHeader(lines[header]) {
		return nil, &ParseError{Line: header + 1, Content: lines[header], Reason: "header missing"}
	}

	releases := []*Release{}
	for i := header + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitColumns(line)
		if len(fields) != len(releaseColumns) {
			return nil, &ParseError{Line: i + 1, Content: line, Reason: "unexpected column count " + strconv.Itoa(len(fields))}
		}
		revision, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, &ParseError{Line: i + 1, Content: line, Reason: "revision is not numeric"}
		}
		status := release.Status(fields[4])
		if !releaseStatuses[status] {
			return nil, &ParseError{Line: i + 1, Content: line, Reason: "unknown release status"}
		}
		releases = append(releases, &Release{
			Name:       fields[0],
			Namespace:  fields[1],
			Revision:   revision,
			Updated:    fields[3],
			Status:     status,
			Chart:      fields[5],
			AppVersion: fields[6],
		})
	}
	return releases, nil
}

func isHeader(line string) bool {
	fields := splitColumns(line)
	if len(fields) != len(releaseColumns) {
		return false
	}
	for i, column := range releaseColumns {
		if !strings.EqualFold(fields[i], column) {
			return false
		}
	}
	return true
}

func splitColumns(line string) []string {
	fields := strings.Split(line, "\t")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
