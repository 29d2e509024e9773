// Package splitcache persists train/test splits next to their dataset.
//
// The cache file lives inside the dataset folder and holds a single entry:
// the split plus the key it was built under. Under "content" validation the
// key includes a fingerprint of every recording, so edits force a rebuild;
// under "path" validation any readable entry is trusted. Writers are
// serialized with an advisory file lock and files are replaced atomically.
package splitcache
