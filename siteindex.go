// Package siteindex plans and executes bounded crawls of documentation
// sites, chunks the extracted page text, and serves ranked full-text search
// over the stored corpus.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, trafilatura/).
package siteindex
