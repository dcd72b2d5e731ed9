package validation

import (
	"testing"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/sra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() sra.SubmissionData {
	return sra.SubmissionData{
		BioSamples: []sra.BioSample{
			{SampleName: "s1", Organism: "Homo sapiens"},
			{SampleName: "s2", Organism: "Mus musculus"},
			{SampleName: "s3"},
		},
		Metadata: []sra.MetadataRecord{
			{"sample_name": "s1", "filename": "sample1.fastq", "filename2": "sample1_2.fastq"},
			{"sample_name": "s2", "filename": "sample2.fastq"},
			{"sample_name": "s2", "filename": "sample1.fastq", "filename2": ""},
			{"sample_name": "s3", "filename": "sample3.fq"},
		},
	}
}

func TestFilter(t *testing.T) {
	got := Filter(sampleData(), []string{"s1", "s2"})

	require.Len(t, got.BioSamples, 2)
	assert.Equal(t, "s1", got.BioSamples[0].SampleName)
	assert.Equal(t, "s2", got.BioSamples[1].SampleName)
	require.Len(t, got.Metadata, 3)
	for _, m := range got.Metadata {
		assert.NotEqual(t, "s3", m.SampleName())
	}
}

func TestFilter_NothingRequested(t *testing.T) {
	got := Filter(sampleData(), nil)
	assert.Empty(t, got.BioSamples)
	assert.Empty(t, got.Metadata)
}

func TestCheckSampleSet(t *testing.T) {
	data := sampleData()

	tests := []struct {
		name      string
		requested []string
		wantErr   bool
	}{
		{name: "all known", requested: []string{"s1", "s2"}},
		{name: "duplicates collapse", requested: []string{"s1", "s1", "s2"}},
		{name: "unknown name", requested: []string{"s1", "nope"}, wantErr: true},
		{name: "empty request", requested: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSampleSet(Filter(data, tt.requested), tt.requested)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidSampleSet)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckSampleSet_DuplicateBioSampleDeclared(t *testing.T) {
	data := sampleData()
	data.BioSamples = append(data.BioSamples, sra.BioSample{SampleName: "s1"})

	err := CheckSampleSet(Filter(data, []string{"s1"}), []string{"s1"})
	assert.ErrorIs(t, err, common.ErrInvalidSampleSet)
}

func TestRequiredFiles(t *testing.T) {
	got := RequiredFiles(Filter(sampleData(), []string{"s1", "s2"}))
	assert.Equal(t, []string{"sample1.fastq", "sample1_2.fastq", "sample2.fastq"}, got)
}

func TestMissingFiles(t *testing.T) {
	filtered := Filter(sampleData(), []string{"s1", "s2"})
	extracted := map[string]string{
		"sample1.fastq":   "/stage/sample1.fastq",
		"sample1_2.fastq": "/stage/sample1_2.fastq",
	}

	assert.Equal(t, []string{"sample2.fastq"}, MissingFiles(filtered, extracted))

	extracted["sample2.fastq"] = "/stage/sample2.fastq"
	assert.Empty(t, MissingFiles(filtered, extracted))
}
