// Package manifest renders the submission.xml file that describes a staged
// submission to the remote archive.
package manifest

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
	"github.com/dmitrijs2005/seqsubmit/internal/sra"
)

// DefaultNamespace qualifies submitter-provided identifiers.
const DefaultNamespace = "GEOME"

// Writer produces the manifest for a staged submission.
type Writer interface {
	Write(dir string, data sra.SubmissionData, sc models.SubmissionContext) error
}

// XMLWriter writes submission.xml in the NCBI submission-portal layout.
type XMLWriter struct {
	Namespace string
}

// NewXMLWriter returns an XMLWriter using DefaultNamespace.
func NewXMLWriter() *XMLWriter {
	return &XMLWriter{Namespace: DefaultNamespace}
}

var _ Writer = (*XMLWriter)(nil)

// Write renders the manifest into dir/submission.xml. Any failure is reported
// as common.ErrManifestWrite and leaves no partial file behind.
func (w *XMLWriter) Write(dir string, data sra.SubmissionData, sc models.SubmissionContext) error {
	doc := w.build(data, sc)

	path := filepath.Join(dir, common.ManifestFileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrManifestWrite, err)
	}

	err = encode(f, doc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("%w: %v", common.ErrManifestWrite, err)
	}
	return nil
}

func encode(f *os.File, doc *submission) error {
	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := f.WriteString("\n")
	return err
}

func (w *XMLWriter) namespace() string {
	if w.Namespace == "" {
		return DefaultNamespace
	}
	return w.Namespace
}

func (w *XMLWriter) build(data sra.SubmissionData, sc models.SubmissionContext) *submission {
	ns := w.namespace()

	doc := &submission{
		Description: description{
			Comment: comment(sc),
			Organization: organization{
				Type: "institute",
				Role: "owner",
				Name: orDefault(sc.Submitter.Institution, sc.Submitter.Name),
				Contact: contact{
					Email: sc.Submitter.Email,
					Name:  personName{First: sc.Submitter.Name},
				},
			},
		},
	}
	if sc.ReleaseDate != nil {
		doc.Description.Hold = &hold{ReleaseDate: sc.ReleaseDate.Format("2006-01-02")}
	}

	for _, s := range data.BioSamples {
		doc.Actions = append(doc.Actions, action{AddData: bioSampleAction(ns, s)})
	}
	for _, m := range data.Metadata {
		doc.Actions = append(doc.Actions, action{AddFiles: sraAction(ns, m)})
	}
	return doc
}

func comment(sc models.SubmissionContext) string {
	title := orDefault(sc.ExpeditionTitle, sc.ExpeditionCode)
	c := fmt.Sprintf("Project %d, expedition %s", sc.ProjectID, title)
	if sc.AppURL != "" {
		c += ", submitted via " + sc.AppURL
	}
	return c
}

func bioSampleAction(ns string, s sra.BioSample) *addData {
	bs := bioSample{
		SchemaVersion: "2.0",
		SampleID:      sampleID{SPUID: spuid{Namespace: ns, Value: s.SampleName}},
		Organism:      organism{Name: s.Organism},
	}
	for _, k := range sortedKeys(s.Attributes) {
		bs.Attributes = append(bs.Attributes, bioAttribute{Name: k, Value: s.Attributes[k]})
	}
	return &addData{
		TargetDB: "BioSample",
		Data: dataBlock{
			ContentType: "xml",
			XMLContent:  xmlContent{BioSample: bs},
		},
		Identifier: identifier{SPUID: spuid{Namespace: ns, Value: s.SampleName}},
	}
}

func sraAction(ns string, m sra.MetadataRecord) *addFiles {
	a := &addFiles{TargetDB: "SRA"}
	for _, name := range m.Filenames() {
		a.Files = append(a.Files, file{Path: name, DataType: "generic-data"})
	}
	for _, k := range sortedKeys(m) {
		switch k {
		case sra.FieldSampleName, sra.FieldFilename, sra.FieldFilename2:
			continue
		}
		a.Attributes = append(a.Attributes, attribute{Name: k, Value: m[k]})
	}
	a.RefID = &attributeRefID{
		Name:  "BioSample",
		RefID: refID{SPUID: spuid{Namespace: ns, Value: m.SampleName()}},
	}
	a.Identifier = identifier{SPUID: spuid{Namespace: ns, Value: runID(m)}}
	return a
}

// runID names an SRA run after its sample and first file so that several
// runs of one sample stay distinct.
func runID(m sra.MetadataRecord) string {
	if f := m[sra.FieldFilename]; f != "" {
		return m.SampleName() + "_" + f
	}
	return m.SampleName()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

type submission struct {
	XMLName     xml.Name    `xml:"Submission"`
	Description description `xml:"Description"`
	Actions     []action    `xml:"Action"`
}

type description struct {
	Comment      string       `xml:"Comment"`
	Organization organization `xml:"Organization"`
	Hold         *hold        `xml:"Hold,omitempty"`
}

type organization struct {
	Type    string  `xml:"type,attr"`
	Role    string  `xml:"role,attr"`
	Name    string  `xml:"Name"`
	Contact contact `xml:"Contact"`
}

type contact struct {
	Email string     `xml:"email,attr,omitempty"`
	Name  personName `xml:"Name"`
}

type personName struct {
	First string `xml:"First,omitempty"`
}

type hold struct {
	ReleaseDate string `xml:"release_date,attr"`
}

type action struct {
	AddData  *addData  `xml:"AddData,omitempty"`
	AddFiles *addFiles `xml:"AddFiles,omitempty"`
}

type addData struct {
	TargetDB   string     `xml:"target_db,attr"`
	Data       dataBlock  `xml:"Data"`
	Identifier identifier `xml:"Identifier"`
}

type dataBlock struct {
	ContentType string     `xml:"content_type,attr"`
	XMLContent  xmlContent `xml:"XmlContent"`
}

type xmlContent struct {
	BioSample bioSample `xml:"BioSample"`
}

type bioSample struct {
	SchemaVersion string         `xml:"schema_version,attr"`
	SampleID      sampleID       `xml:"SampleId"`
	Organism      organism       `xml:"Organism"`
	Attributes    []bioAttribute `xml:"Attributes>Attribute"`
}

type sampleID struct {
	SPUID spuid `xml:"SPUID"`
}

type organism struct {
	Name string `xml:"OrganismName"`
}

type bioAttribute struct {
	Name  string `xml:"attribute_name,attr"`
	Value string `xml:",chardata"`
}

type addFiles struct {
	TargetDB   string          `xml:"target_db,attr"`
	Files      []file          `xml:"File"`
	Attributes []attribute     `xml:"Attribute"`
	RefID      *attributeRefID `xml:"AttributeRefId,omitempty"`
	Identifier identifier      `xml:"Identifier"`
}

type file struct {
	Path     string `xml:"file_path,attr"`
	DataType string `xml:"DataType"`
}

type attribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type attributeRefID struct {
	Name  string `xml:"name,attr"`
	RefID refID  `xml:"RefId"`
}

type refID struct {
	SPUID spuid `xml:"SPUID"`
}

type identifier struct {
	SPUID spuid `xml:"SPUID"`
}

type spuid struct {
	Namespace string `xml:"spuid_namespace,attr"`
	Value     string `xml:",chardata"`
}
