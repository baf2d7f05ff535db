package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted record types. Field order is the wire
// format: changing it, or any field encoding, breaks existing databases.
// Times are stored as Unix microseconds.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// VectorMUS serializes embedding vectors as a varint length followed by
// raw-encoded float32 elements.
var VectorMUS = vectorMUS{}

type vectorMUS struct{}

func (s vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (s vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrMalformedRecord
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var m int
		v[i], m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (s vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

// CatalogEntryMUS serializes CatalogEntry values.
var CatalogEntryMUS = catalogEntryMUS{}

type catalogEntryMUS struct{}

func (s catalogEntryMUS) Marshal(v CatalogEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.CanonicalKey, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.FileHandle, bs[n:])
	n += varint.Int64.Marshal(v.InsertedAt.UnixMicro(), bs[n:])
	return n
}

func (s catalogEntryMUS) Unmarshal(bs []byte) (v CatalogEntry, n int, err error) {
	var m int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.CanonicalKey, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Description, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.FileHandle, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	var micro int64
	micro, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.InsertedAt = time.UnixMicro(micro).UTC()
	return v, n, nil
}

func (s catalogEntryMUS) Size(v CatalogEntry) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.CanonicalKey)
	size += ord.String.Size(v.Description)
	size += ord.String.Size(v.FileHandle)
	size += varint.Int64.Size(v.InsertedAt.UnixMicro())
	return size
}

// CursorMUS serializes Cursor values.
var CursorMUS = cursorMUS{}

type cursorMUS struct{}

func (s cursorMUS) Marshal(v Cursor, bs []byte) (n int) {
	n = ord.String.Marshal(v.Consumer, bs)
	n += varint.Int64.Marshal(v.LastConsumedID, bs[n:])
	n += varint.Int64.Marshal(v.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (s cursorMUS) Unmarshal(bs []byte) (v Cursor, n int, err error) {
	var m int
	v.Consumer, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.LastConsumedID, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	var micro int64
	micro, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.UpdatedAt = time.UnixMicro(micro).UTC()
	return v, n, nil
}

func (s cursorMUS) Size(v Cursor) (size int) {
	size = ord.String.Size(v.Consumer)
	size += varint.Int64.Size(v.LastConsumedID)
	size += varint.Int64.Size(v.UpdatedAt.UnixMicro())
	return size
}
