package storage

import (
	"fmt"
	"strings"
)

// Purpose names a published map asset.
type Purpose string

const (
	PurposeArtifact Purpose = "artifact"
	PurposePreview  Purpose = "preview"
)

// LatestSegment is the folder that always holds the newest run.
const LatestSegment = "latest"

var fileNames = map[Purpose]string{
	PurposeArtifact: "regions.json",
	PurposePreview:  "preview.png",
}

// PathParams identify one published object.
type PathParams struct {
	Prefix string
	RunID  string
	// Latest selects the stable alias instead of the run folder.
	Latest bool
}

// BuildObjectPath returns "<prefix>/<run-id>/<file>" or, for the alias,
// "<prefix>/latest/<file>".
func BuildObjectPath(purpose Purpose, params PathParams) (string, error) {
	name, ok := fileNames[purpose]
	if !ok {
		return "", fmt.Errorf("storage: unsupported asset purpose %q", purpose)
	}
	folder := LatestSegment
	if !params.Latest {
		runID, err := validateSegment("runID", params.RunID)
		if err != nil {
			return "", err
		}
		folder = runID
	}
	prefix, err := validatePrefix(params.Prefix)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return folder + "/" + name, nil
	}
	return prefix + "/" + folder + "/" + name, nil
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}

// validatePrefix allows nested folders but no traversal or empty segments.
func validatePrefix(prefix string) (string, error) {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "", nil
	}
	for _, seg := range strings.Split(prefix, "/") {
		if _, err := validateSegment("prefix", seg); err != nil {
			return "", err
		}
	}
	return prefix, nil
}

// ParseURL splits "gs://bucket/some/prefix" into bucket and prefix.
func ParseURL(raw string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "gs://")
	if !ok {
		return "", "", fmt.Errorf("storage: %q is not a gs:// URL", raw)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("storage: %q has no bucket", raw)
	}
	prefix, err = validatePrefix(prefix)
	if err != nil {
		return "", "", err
	}
	return bucket, prefix, nil
}
