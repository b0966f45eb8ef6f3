package core

import (
	"errors"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Serializers for values persisted by the storage layer.
// Field order is part of the on-disk format; append new fields at the end.
var (
	IDMUS          = idMUS{}
	FAQEntryMUS    = faqEntryMUS{}
	InteractionMUS = interactionMUS{}
)

var (
	errNegativeLength   = errors.New("negative length")
	errLengthOutOfRange = errors.New("length exceeds remaining input")
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	return ID(tmp), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type faqEntryMUS struct{}

func (s faqEntryMUS) Marshal(v FAQEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.Question, bs[n:])
	return n + ord.String.Marshal(v.Answer, bs[n:])
}

func (s faqEntryMUS) Unmarshal(bs []byte) (v FAQEntry, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Question, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Answer, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s faqEntryMUS) Size(v FAQEntry) (size int) {
	size = ord.String.Size(v.ID)
	size += ord.String.Size(v.Question)
	return size + ord.String.Size(v.Answer)
}

func (s faqEntryMUS) Skip(bs []byte) (n int, err error) {
	for range 3 {
		var n1 int
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type interactionMUS struct{}

func (s interactionMUS) Marshal(v Interaction, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Query, bs[n:])
	n += varint.Int.Marshal(len(v.Sources), bs[n:])
	for _, src := range v.Sources {
		n += ord.String.Marshal(src, bs[n:])
	}
	n += varint.Float64.Marshal(v.Score, bs[n:])
	n += ord.Bool.Marshal(v.Matched, bs[n:])
	return n + varint.Int64.Marshal(v.Timestamp.UnixMicro(), bs[n:])
}

func (s interactionMUS) Unmarshal(bs []byte) (v Interaction, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Query, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length < 0 {
		err = errNegativeLength
		return
	}
	// every source takes at least one byte
	if length > len(bs)-n {
		err = errLengthOutOfRange
		return
	}
	if length > 0 {
		v.Sources = make([]string, length)
		for i := range v.Sources {
			v.Sources[i], n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	v.Score, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Matched, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp = time.UnixMicro(micros).UTC()
	return
}

func (s interactionMUS) Size(v Interaction) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Query)
	size += varint.Int.Size(len(v.Sources))
	for _, src := range v.Sources {
		size += ord.String.Size(src)
	}
	size += varint.Float64.Size(v.Score)
	size += ord.Bool.Size(v.Matched)
	return size + varint.Int64.Size(v.Timestamp.UnixMicro())
}
