// Package docdex builds a searchable index over a cloud provider's public
// documentation. It crawls the provider's service catalog and per-service
// navigation trees, normalizes pages to markdown, splits them into
// retrieval-sized chunks along heading structure, embeds the chunks, and
// serves nearest-neighbor retrieval over the resulting vector index.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., sqlite/, crawl/, gemini/).
package docdex
