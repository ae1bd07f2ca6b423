// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/poiesic/vectorsync/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalStoredChunk serializes a StoredChunk to bytes.
func MarshalStoredChunk(chunk *core.StoredChunk) []byte {
	buf := make([]byte, core.StoredChunkMUS.Size(*chunk))
	core.StoredChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalStoredChunk deserializes a StoredChunk from bytes.
func UnmarshalStoredChunk(data []byte) (*core.StoredChunk, error) {
	chunk, _, err := core.StoredChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalContentIndexEntry serializes a ContentIndexEntry to bytes.
func MarshalContentIndexEntry(entry *core.ContentIndexEntry) []byte {
	buf := make([]byte, core.ContentIndexEntryMUS.Size(*entry))
	core.ContentIndexEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalContentIndexEntry deserializes a ContentIndexEntry from bytes.
func UnmarshalContentIndexEntry(data []byte) (*core.ContentIndexEntry, error) {
	entry, _, err := core.ContentIndexEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalIngestionJob serializes an IngestionJob to bytes.
func MarshalIngestionJob(job *core.IngestionJob) []byte {
	buf := make([]byte, core.IngestionJobMUS.Size(*job))
	core.IngestionJobMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalIngestionJob deserializes an IngestionJob from bytes.
func UnmarshalIngestionJob(data []byte) (*core.IngestionJob, error) {
	job, _, err := core.IngestionJobMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
