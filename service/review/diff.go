package review

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/registrykit/bridge/model/cms"
)

// comparable view of a service for path lookup: the dotted sensitive paths
// are rooted at the record, e.g. "data.name".
type comparison struct {
	ID   string          `json:"id"`
	Data cms.ServiceData `json:"data"`
}

// changedPaths returns the configured sensitive paths whose values differ
// between the published snapshot and the candidate.
func changedPaths(paths []string, published, candidate *comparison) ([]string, error) {
	publishedDoc, err := toDocument(published)
	if err != nil {
		return nil, err
	}
	candidateDoc, err := toDocument(candidate)
	if err != nil {
		return nil, err
	}
	var changed []string
	for _, path := range paths {
		before := lookupPath(publishedDoc, path)
		after := lookupPath(candidateDoc, path)
		if !reflect.DeepEqual(before, after) {
			changed = append(changed, path)
		}
	}
	return changed, nil
}

// toDocument round-trips the value through JSON so path lookup sees the
// wire names, the same names the sensitive-path configuration uses.
func toDocument(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("review: encoding comparison document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("review: decoding comparison document: %w", err)
	}
	return doc, nil
}

// lookupPath walks a dotted path through nested objects, answering nil when
// any segment is absent.
func lookupPath(doc map[string]any, path string) any {
	var current any = doc
	for _, segment := range strings.Split(path, ".") {
		object, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = object[segment]
		if !ok {
			return nil
		}
	}
	return current
}

// renderDiff produces a unified diff of the two documents for the
// manual-review telemetry trail.
func renderDiff(published, candidate *comparison) string {
	before, err := json.MarshalIndent(published, "", "  ")
	if err != nil {
		return ""
	}
	after, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before) + "\n"),
		B:        difflib.SplitLines(string(after) + "\n"),
		FromFile: "published",
		ToFile:   "candidate",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}
