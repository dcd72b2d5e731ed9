package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pb "github.com/dmitrijs2005/seqsubmit/internal/proto"
	"github.com/dmitrijs2005/seqsubmit/internal/sra"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type submitOptions struct {
	metadataPath string
	contact      sra.SubmitterContact
}

func newSubmitCommand(g *globalOptions) *cobra.Command {
	opts := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit ARCHIVE",
		Short: "Upload an archive and ingest it as a new submission",
		Long: `Upload ARCHIVE (zip, tar, tar.gz, tar.zst, tar.lz4 or tar.bz2) and ingest it.

The metadata file is JSON, or YAML when its name ends in .yaml or .yml:

  {
    "project_id": 42,
    "expedition_code": "EXP1",
    "expedition_title": "Reef survey",
    "bio_samples": ["s1", "s2"],
    "release_date": "2027-03-01T00:00:00Z",
    "submission_data": {
      "bio_samples": [{"sample_name": "s1", "organism": "Homo sapiens"}],
      "sra_metadata": [{"sample_name": "s1", "filename": "s1_R1.fastq.gz"}]
    }
  }

Examples:
  seqsubmit submit reads.zip --metadata meta.json --name "Ada Lovelace" --email ada@example.org`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, g, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.metadataPath, "metadata", "m", "", "JSON or YAML file with project, samples and run metadata")
	cmd.Flags().StringVar(&opts.contact.Name, "name", "", "submitter name")
	cmd.Flags().StringVar(&opts.contact.Email, "email", "", "submitter email")
	cmd.Flags().StringVar(&opts.contact.Institution, "institution", "", "submitter institution")
	_ = cmd.MarkFlagRequired("metadata")

	return cmd
}

func runSubmit(cmd *cobra.Command, g *globalOptions, opts *submitOptions, archivePath string) error {
	meta, err := readMetadata(opts.metadataPath)
	if err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	c, cfg, err := g.session(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	out := cmd.OutOrStdout()

	up, err := c.RequestUpload(ctx)
	if err != nil {
		return fmt.Errorf("request upload: %w", err)
	}

	fmt.Fprintf(out, "Uploading %s (%d bytes)...\n", archivePath, info.Size())
	if err := uploadArchive(ctx, up.UploadURL, f, info.Size()); err != nil {
		return fmt.Errorf("upload archive: %w", err)
	}

	meta.StorageKey = up.StorageKey
	resp, err := c.Ingest(ctx, &pb.IngestRequest{Contact: opts.contact, Metadata: *meta})
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	printOutcome(out, resp)
	if !resp.Success {
		return fmt.Errorf("submission rejected: %s", resp.Reason)
	}
	return nil
}

func readMetadata(path string) (*sra.UploadMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta sra.UploadMetadata
	if err := decodeMetadata(path, data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	if meta.ExpeditionCode == "" || len(meta.BioSamples) == 0 {
		return nil, fmt.Errorf("metadata %s: expedition_code and bio_samples are required", path)
	}
	return &meta, nil
}

// decodeMetadata reads YAML through a generic document re-encoded as JSON so
// both formats share the json tags of the sra types.
func decodeMetadata(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return err
		}
		var err error
		if data, err = json.Marshal(doc); err != nil {
			return err
		}
	}
	return json.Unmarshal(data, v)
}

func printOutcome(w io.Writer, resp *pb.IngestResponse) {
	if resp.Success {
		fmt.Fprintf(w, "Submission %s staged, it will be delivered on the next dispatch pass.\n", resp.SubmissionID)
	} else {
		fmt.Fprintf(w, "Submission rejected (%s): %s\n", resp.Reason, strings.TrimSpace(resp.Message))
	}
	if len(resp.InvalidFiles) > 0 {
		fmt.Fprintf(w, "Ignored archive entries: %s\n", strings.Join(resp.InvalidFiles, ", "))
	}
}
