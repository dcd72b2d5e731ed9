// Package validation checks a submission request against the declared sample
// data and the files that were actually extracted.
package validation

import (
	"sort"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/sra"
)

// Filter keeps only the bio samples and metadata records that belong to one
// of the requested sample names.
func Filter(data sra.SubmissionData, requested []string) sra.SubmissionData {
	want := toSet(requested)

	var out sra.SubmissionData
	for _, s := range data.BioSamples {
		if _, ok := want[s.SampleName]; ok {
			out.BioSamples = append(out.BioSamples, s)
		}
	}
	for _, m := range data.Metadata {
		if _, ok := want[m.SampleName()]; ok {
			out.Metadata = append(out.Metadata, m)
		}
	}
	return out
}

// CheckSampleSet fails with common.ErrInvalidSampleSet unless every requested
// name resolved to exactly one bio sample.
func CheckSampleSet(filtered sra.SubmissionData, requested []string) error {
	if len(toSet(requested)) != len(filtered.BioSamples) {
		return common.ErrInvalidSampleSet
	}
	return nil
}

// RequiredFiles returns the sorted, de-duplicated file names referenced by
// the metadata records.
func RequiredFiles(filtered sra.SubmissionData) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range filtered.Metadata {
		for _, name := range m.Filenames() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// MissingFiles returns the required names that extraction did not produce.
func MissingFiles(filtered sra.SubmissionData, extracted map[string]string) []string {
	var missing []string
	for _, name := range RequiredFiles(filtered) {
		if _, ok := extracted[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
