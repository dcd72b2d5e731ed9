package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/logging"
	"github.com/dmitrijs2005/seqsubmit/internal/server/archive"
	"github.com/dmitrijs2005/seqsubmit/internal/server/config"
	"github.com/dmitrijs2005/seqsubmit/internal/server/manifest"
	"github.com/dmitrijs2005/seqsubmit/internal/server/metrics"
	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
	"github.com/dmitrijs2005/seqsubmit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/seqsubmit/internal/server/validation"
	"github.com/dmitrijs2005/seqsubmit/internal/sra"
)

// Reason classifies an ingest outcome.
type Reason string

const (
	ReasonSuccess            Reason = "success"
	ReasonInvalidSampleSet   Reason = "invalid_sample_set"
	ReasonCorruptArchive     Reason = "corrupt_archive"
	ReasonMissingFiles       Reason = "missing_files"
	ReasonManifestWriteError Reason = "manifest_write_error"
	ReasonPersistenceError   Reason = "persistence_error"
	ReasonInternalError      Reason = "internal_error"
)

// Stage is a step of the ingest state machine.
type Stage string

const (
	StageValidating      Stage = "validating"
	StageExtracting      Stage = "extracting"
	StageManifestWriting Stage = "manifest_writing"
	StagePersisting      Stage = "persisting"
	StageDone            Stage = "done"
)

const missingFilesHint = "Either submit these files, or remove the bioSamples that require these files from this submission."

// Outcome is what an ingest call reports back to the caller.
type Outcome struct {
	Success      bool
	Reason       Reason
	Message      string
	MissingFiles []string
	InvalidFiles []string
	SubmissionID string
}

// ArchiveExtractor unpacks an archive stream into a directory.
type ArchiveExtractor interface {
	Extract(ctx context.Context, r io.Reader, dir string) (*archive.Result, error)
}

// ObjectOpener streams uploaded archives out of object storage.
type ObjectOpener interface {
	OpenObject(ctx context.Context, key string) (io.ReadCloser, error)
}

// IngestService validates an uploaded archive against the declared sample
// data, stages the files with a manifest and records a READY submission.
type IngestService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	extractor   ArchiveExtractor
	manifest    manifest.Writer
	objects     ObjectOpener
	stagingDir  string
	appURL      string
	logger      logging.Logger
	metrics     metrics.Recorder
	now         func() time.Time
}

// NewIngestService wires the coordinator from the server config. objects may
// be nil when archives are only ever passed in directly.
func NewIngestService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, objects ObjectOpener,
	logger logging.Logger, rec metrics.Recorder) *IngestService {
	if logger == nil {
		logger = logging.Nop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	logger = logger.With("module", "ingest")
	return &IngestService{
		db:          db,
		repomanager: m,
		extractor:   archive.NewExtractor(cfg.AcceptedSuffixes, "", logger),
		manifest:    manifest.NewXMLWriter(),
		objects:     objects,
		stagingDir:  cfg.StagingDir,
		appURL:      cfg.AppURL,
		logger:      logger,
		metrics:     rec,
		now:         time.Now,
	}
}

// IngestFromStorage runs Ingest on the archive object named by
// meta.StorageKey. Objects outside the caller's key prefix are refused.
func (s *IngestService) IngestFromStorage(ctx context.Context, user sra.SubmitterContact, meta sra.UploadMetadata) *Outcome {
	if s.objects == nil || !ownsStorageKey(user.UserID, meta.StorageKey) {
		s.logger.Warn(ctx, "archive key rejected", "user", user.UserID, "key", meta.StorageKey)
		return s.finish(fail(ReasonInternalError))
	}

	rc, err := s.objects.OpenObject(ctx, meta.StorageKey)
	if err != nil {
		s.logger.Error(ctx, "opening archive object", "key", meta.StorageKey, "error", err)
		return s.finish(fail(ReasonInternalError))
	}
	defer rc.Close()

	return s.Ingest(ctx, user, meta, rc)
}

// Ingest runs Validating → Extracting → ManifestWriting → Persisting. On any
// failure after the staging directory was created the directory is removed
// before returning.
func (s *IngestService) Ingest(ctx context.Context, user sra.SubmitterContact, meta sra.UploadMetadata, r io.Reader) *Outcome {
	log := s.logger.With("expedition", meta.ExpeditionCode, "user", user.UserID)

	filtered := validation.Filter(meta.SubmissionData, meta.BioSamples)
	if err := validation.CheckSampleSet(filtered, meta.BioSamples); err != nil {
		log.Info(ctx, "ingest rejected", "stage", StageValidating, "error", err)
		return s.finish(fail(ReasonInvalidSampleSet))
	}

	dir, err := s.makeStagingDir(meta.ExpeditionCode)
	if err != nil {
		log.Error(ctx, "creating staging directory", "error", err)
		return s.finish(fail(ReasonInternalError))
	}
	log = log.With("dir", dir)

	out := s.stage(ctx, log, dir, user, meta, filtered, r)
	if !out.Success {
		if err := os.RemoveAll(dir); err != nil {
			log.Error(ctx, "removing staging directory", "error", err)
		}
	}
	return s.finish(out)
}

func (s *IngestService) stage(ctx context.Context, log logging.Logger, dir string, user sra.SubmitterContact,
	meta sra.UploadMetadata, filtered sra.SubmissionData, r io.Reader) *Outcome {

	log.Debug(ctx, "ingest stage", "stage", StageExtracting)
	res, err := s.extractor.Extract(ctx, r, dir)
	if err != nil {
		log.Info(ctx, "ingest failed", "stage", StageExtracting, "error", err)
		if errors.Is(err, common.ErrCorruptArchive) {
			return fail(ReasonCorruptArchive)
		}
		return fail(ReasonInternalError)
	}

	if missing := validation.MissingFiles(filtered, res.Files); len(missing) > 0 {
		err := &common.MissingFilesError{Names: missing}
		log.Info(ctx, "ingest failed", "stage", StageExtracting, "error", err)
		out := fail(ReasonMissingFiles)
		out.Message = missingFilesMessage(missing)
		out.MissingFiles = missing
		out.InvalidFiles = res.Invalid
		return out
	}

	log.Debug(ctx, "ingest stage", "stage", StageManifestWriting)
	sc := models.SubmissionContext{
		Submitter:       user,
		ProjectID:       meta.ProjectID,
		ExpeditionCode:  meta.ExpeditionCode,
		ExpeditionTitle: meta.ExpeditionTitle,
		ReleaseDate:     meta.ReleaseDate,
		AppURL:          s.appURL,
	}
	if err := s.manifest.Write(dir, filtered, sc); err != nil {
		log.Error(ctx, "ingest failed", "stage", StageManifestWriting, "error", err)
		return fail(ReasonManifestWriteError)
	}

	log.Debug(ctx, "ingest stage", "stage", StagePersisting)
	sub := &models.Submission{
		ProjectID:      meta.ProjectID,
		ExpeditionCode: meta.ExpeditionCode,
		UserID:         user.UserID,
		SubmissionDir:  dir,
		Status:         models.StatusReady,
	}
	id, err := s.repomanager.Submissions(s.db).Insert(ctx, sub)
	if err != nil {
		log.Error(ctx, "ingest failed", "stage", StagePersisting, "error", fmt.Errorf("%w: %v", common.ErrPersistence, err))
		return fail(ReasonPersistenceError)
	}

	log.Info(ctx, "submission staged", "stage", StageDone, "id", id, "files", len(res.Files), "invalid", len(res.Invalid))
	return &Outcome{
		Success:      true,
		Reason:       ReasonSuccess,
		InvalidFiles: res.Invalid,
		SubmissionID: id,
	}
}

func (s *IngestService) finish(out *Outcome) *Outcome {
	s.metrics.IngestOutcome(string(out.Reason))
	return out
}

var unsafeDirChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// makeStagingDir creates <stagingDir>/<code>_<unix millis>_<8 hex chars>. An
// existing directory is an error, never reused.
func (s *IngestService) makeStagingDir(expeditionCode string) (string, error) {
	code := strings.Trim(unsafeDirChars.ReplaceAllString(expeditionCode, "-"), "-")
	if code == "" {
		code = "submission"
	}

	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		return "", err
	}

	root, err := filepath.Abs(s.stagingDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(root, fmt.Sprintf("%s_%d_%s", code, s.now().UnixMilli(), suffix))
	if err := os.Mkdir(dir, 0o750); err != nil {
		return "", err
	}
	return dir, nil
}

func fail(reason Reason) *Outcome {
	return &Outcome{Reason: reason, Message: reasonMessages[reason]}
}

var reasonMessages = map[Reason]string{
	ReasonInvalidSampleSet:   "Invalid bioSamples provided",
	ReasonCorruptArchive:     "Invalid/corrupt archive file.",
	ReasonManifestWriteError: "Error creating submission.xml file",
	ReasonPersistenceError:   "Error saving SRA submission",
	ReasonInternalError:      "Internal error",
}

func missingFilesMessage(names []string) string {
	return fmt.Sprintf("The following required files are missing: \"%s\".\n%s",
		strings.Join(names, "\", \""), missingFilesHint)
}
