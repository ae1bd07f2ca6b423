// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	sliceAMZKW3NNUxqiEfQzΣCDΔUgΞΞ = ord.NewSliceSer[float32](varint.Float32)
	sliceGNQB14C4yDPΔlOp2REwcsAΞΞ = ord.NewSliceSer[ID](IDMUS)
	sliceN9YXn1Q2SNcb81Inc6sjOwΞΞ = ord.NewSliceSer[LogEntry](LogEntryMUS)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var JobStatusMUS = jobStatusMUS{}

type jobStatusMUS struct{}

func (s jobStatusMUS) Marshal(v JobStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s jobStatusMUS) Unmarshal(bs []byte) (v JobStatus, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = JobStatus(tmp)
	return
}

func (s jobStatusMUS) Size(v JobStatus) (size int) {
	return varint.Int.Size(int(v))
}

func (s jobStatusMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.SourceID, bs[n:])
	n += ord.String.Marshal(v.UserID, bs[n:])
	n += varint.Int.Marshal(v.SequenceIndex, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(v.TokenEstimate, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Locator, bs[n:])
	return n + ord.String.Marshal(v.SourceType, bs[n:])
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.SourceID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UserID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SequenceIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TokenEstimate, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Locator, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.SourceID)
	size += ord.String.Size(v.UserID)
	size += varint.Int.Size(v.SequenceIndex)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(v.TokenEstimate)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Locator)
	return size + ord.String.Size(v.SourceType)
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

var StoredChunkMUS = storedChunkMUS{}

type storedChunkMUS struct{}

func (s storedChunkMUS) Marshal(v StoredChunk, bs []byte) (n int) {
	n = ChunkMUS.Marshal(v.Chunk, bs)
	n += sliceAMZKW3NNUxqiEfQzΣCDΔUgΞΞ.Marshal(v.Vector, bs[n:])
	n += varint.Uint64.Marshal(v.Generation, bs[n:])
	return n + ord.Bool.Marshal(v.Finalized, bs[n:])
}

func (s storedChunkMUS) Unmarshal(bs []byte) (v StoredChunk, n int, err error) {
	v.Chunk, n, err = ChunkMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Vector, n1, err = sliceAMZKW3NNUxqiEfQzΣCDΔUgΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Generation, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Finalized, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	return
}

func (s storedChunkMUS) Size(v StoredChunk) (size int) {
	size = ChunkMUS.Size(v.Chunk)
	size += sliceAMZKW3NNUxqiEfQzΣCDΔUgΞΞ.Size(v.Vector)
	size += varint.Uint64.Size(v.Generation)
	return size + ord.Bool.Size(v.Finalized)
}

func (s storedChunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = ChunkMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = sliceAMZKW3NNUxqiEfQzΣCDΔUgΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	return
}

var ContentIndexEntryMUS = contentIndexEntryMUS{}

type contentIndexEntryMUS struct{}

func (s contentIndexEntryMUS) Marshal(v ContentIndexEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.UserID, bs)
	n += ord.String.Marshal(v.SourceID, bs[n:])
	n += ord.String.Marshal(v.ContentHash, bs[n:])
	n += ord.String.Marshal(v.Version, bs[n:])
	n += sliceGNQB14C4yDPΔlOp2REwcsAΞΞ.Marshal(v.ChunkIDs, bs[n:])
	n += varint.Uint64.Marshal(v.Generation, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.LastIngestedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s contentIndexEntryMUS) Unmarshal(bs []byte) (v ContentIndexEntry, n int, err error) {
	v.UserID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.SourceID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ContentHash, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Version, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkIDs, n1, err = sliceGNQB14C4yDPΔlOp2REwcsAΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Generation, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.LastIngestedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s contentIndexEntryMUS) Size(v ContentIndexEntry) (size int) {
	size = ord.String.Size(v.UserID)
	size += ord.String.Size(v.SourceID)
	size += ord.String.Size(v.ContentHash)
	size += ord.String.Size(v.Version)
	size += sliceGNQB14C4yDPΔlOp2REwcsAΞΞ.Size(v.ChunkIDs)
	size += varint.Uint64.Size(v.Generation)
	size += raw.TimeUnixMicro.Size(v.LastIngestedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s contentIndexEntryMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sliceGNQB14C4yDPΔlOp2REwcsAΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var JobCountersMUS = jobCountersMUS{}

type jobCountersMUS struct{}

func (s jobCountersMUS) Marshal(v JobCounters, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Found, bs)
	n += varint.Int.Marshal(v.Processed, bs[n:])
	n += varint.Int.Marshal(v.Embedded, bs[n:])
	n += varint.Int.Marshal(v.Skipped, bs[n:])
	n += varint.Int.Marshal(v.Deleted, bs[n:])
	return n + varint.Int.Marshal(v.Errors, bs[n:])
}

func (s jobCountersMUS) Unmarshal(bs []byte) (v JobCounters, n int, err error) {
	v.Found, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Processed, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Embedded, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Skipped, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Deleted, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Errors, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (s jobCountersMUS) Size(v JobCounters) (size int) {
	size = varint.Int.Size(v.Found)
	size += varint.Int.Size(v.Processed)
	size += varint.Int.Size(v.Embedded)
	size += varint.Int.Size(v.Skipped)
	size += varint.Int.Size(v.Deleted)
	return size + varint.Int.Size(v.Errors)
}

func (s jobCountersMUS) Skip(bs []byte) (n int, err error) {
	n, err = varint.Int.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	return
}

var LogEntryMUS = logEntryMUS{}

type logEntryMUS struct{}

func (s logEntryMUS) Marshal(v LogEntry, bs []byte) (n int) {
	n = raw.TimeUnixMicro.Marshal(v.At, bs)
	return n + ord.String.Marshal(v.Message, bs[n:])
}

func (s logEntryMUS) Unmarshal(bs []byte) (v LogEntry, n int, err error) {
	v.At, n, err = raw.TimeUnixMicro.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Message, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s logEntryMUS) Size(v LogEntry) (size int) {
	size = raw.TimeUnixMicro.Size(v.At)
	return size + ord.String.Size(v.Message)
}

func (s logEntryMUS) Skip(bs []byte) (n int, err error) {
	n, err = raw.TimeUnixMicro.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

var IngestionJobMUS = ingestionJobMUS{}

type ingestionJobMUS struct{}

func (s ingestionJobMUS) Marshal(v IngestionJob, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.UserID, bs[n:])
	n += JobStatusMUS.Marshal(v.Status, bs[n:])
	n += JobCountersMUS.Marshal(v.Counters, bs[n:])
	n += sliceN9YXn1Q2SNcb81Inc6sjOwΞΞ.Marshal(v.Log, bs[n:])
	n += ord.String.Marshal(v.ErrorSummary, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.CreatedAt, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.StartedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.FinishedAt, bs[n:])
}

func (s ingestionJobMUS) Unmarshal(bs []byte) (v IngestionJob, n int, err error) {
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.UserID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = JobStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Counters, n1, err = JobCountersMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Log, n1, err = sliceN9YXn1Q2SNcb81Inc6sjOwΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ErrorSummary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FinishedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s ingestionJobMUS) Size(v IngestionJob) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.UserID)
	size += JobStatusMUS.Size(v.Status)
	size += JobCountersMUS.Size(v.Counters)
	size += sliceN9YXn1Q2SNcb81Inc6sjOwΞΞ.Size(v.Log)
	size += ord.String.Size(v.ErrorSummary)
	size += raw.TimeUnixMicro.Size(v.CreatedAt)
	size += raw.TimeUnixMicro.Size(v.UpdatedAt)
	size += raw.TimeUnixMicro.Size(v.StartedAt)
	return size + raw.TimeUnixMicro.Size(v.FinishedAt)
}

func (s ingestionJobMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = JobStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = JobCountersMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sliceN9YXn1Q2SNcb81Inc6sjOwΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
