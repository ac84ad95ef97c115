// Package sections separates the syncable part of a config file from the
// machine-local regions that replication must never overwrite.
//
// A machine-local region is delimited by a pair of comment tags written in
// the file's own comment syntax:
//
//	# drifters::exclude::start
//	export GITHUB_TOKEN=...
//	# drifters::exclude::stop
//
// A line is a tag only when the tag is its first non-whitespace content, so
// a tag quoted at the end of another line never opens a region. Regions are
// matched by position: the Nth region of incoming content pairs with the Nth
// region of the local file.
//
// Parse turns content into a Document made of SyncedSpan and LocalOnlySpan
// values. The merge pipeline only ever copies LocalOnlySpan values from the
// local document, it never builds or edits them, which keeps region bodies
// out of replication.
package sections
