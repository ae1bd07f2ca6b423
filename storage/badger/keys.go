package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/vectorsync/core"
)

// Key prefixes for different data types
const (
	chunkPrefix        = "vchunk"
	chunkSourcePrefix  = "vsrc"
	stagedChunkPrefix  = "vstage"
	contentIndexPrefix = "cidx"
	jobPrefix          = "job"
	jobUserPrefix      = "jobu"
	generationSeq      = "genseq"
)

// makeChunkKey generates a key for a stored chunk in a user's namespace.
func makeChunkKey(userID string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:", chunkPrefix, userID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeUserChunkPrefix generates the iteration prefix for all chunks of a user.
func makeUserChunkPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkPrefix, userID))
}

// makeChunkSourceKey generates a composite key for the source index.
// Format: prefix:user:source:id
func makeChunkSourceKey(userID, sourceID string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:%s:", chunkSourcePrefix, userID, sourceID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkSourcePrefix generates the iteration prefix for all chunks of a
// source within a user's namespace.
func makeChunkSourcePrefix(userID, sourceID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", chunkSourcePrefix, userID, sourceID))
}

// makeStagedChunkKey generates a key for a staged chunk awaiting promotion.
// Format: prefix:user:source:id
func makeStagedChunkKey(userID, sourceID string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:%s:", stagedChunkPrefix, userID, sourceID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeStagedChunkPrefix generates the iteration prefix for the staging area
// of a source within a user's namespace.
func makeStagedChunkPrefix(userID, sourceID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", stagedChunkPrefix, userID, sourceID))
}

// makeContentIndexKey generates a key for a content index entry.
func makeContentIndexKey(userID, sourceID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", contentIndexPrefix, userID, sourceID))
}

// makeContentIndexPrefix generates the iteration prefix for a user's entries.
func makeContentIndexPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", contentIndexPrefix, userID))
}

// makeJobKey generates a key for an ingestion job by ID.
func makeJobKey(jobID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", jobPrefix, jobID))
}

// makeJobUserKey generates a composite key for the per-user job index.
// The creation timestamp is inverted so iteration yields newest first.
// Format: prefix:user:^created:jobID
func makeJobUserKey(userID string, createdMicro int64, jobID string) []byte {
	prefix := fmt.Sprintf("%s:%s:", jobUserPrefix, userID)
	buf := make([]byte, len(prefix)+8+len(jobID))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], ^uint64(createdMicro))
	offset += 8
	copy(buf[offset:], jobID)
	return buf
}

// makeJobUserPrefix generates the iteration prefix for a user's jobs.
func makeJobUserPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", jobUserPrefix, userID))
}
