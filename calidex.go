// Package calidex provides a local, CLI-based index of remote Calibre
// content servers. It crawls each server's catalog into a local document
// store, answers substring queries against the stored records, and
// resolves matched records into downloadable files.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, http/, flock/).
package calidex
