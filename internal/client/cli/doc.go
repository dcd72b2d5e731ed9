// Package cli provides the seqsubmit command-line client.
//
// Commands:
//   - submit ARCHIVE --metadata FILE: upload an archive to object storage and
//     ingest it as a new submission
//   - list: show the caller's submissions and their delivery status
//   - reset ID: move a FAILED submission back to READY
//
// The access token comes from --token, the config file or SEQSUBMIT_TOKEN,
// and is prompted for on a terminal when none is set.
package cli
