// Copyright 2020 Dolthub, Inc.
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

package objects

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// codecVersion is the first byte of every encoded object.
const codecVersion byte = 1

// Encode produces the canonical byte form of an object. The layout is fixed:
// version byte, kind byte, then the kind specific body with every
// variable length field length prefixed. Object ids are the hash of these
// bytes, so the encoding must never depend on map ordering or platform.
func Encode(obj Object) []byte {
	var buf bytes.Buffer

	buf.WriteByte(codecVersion)
	buf.WriteByte(byte(obj.Kind()))

	switch o := obj.(type) {
	case *Commit:
		writeHash(&buf, o.Tree)
		writeUvarint(&buf, uint64(len(o.Parents)))
		for _, p := range o.Parents {
			writeHash(&buf, p)
		}
		writeSignature(&buf, o.Author)
		writeSignature(&buf, o.Committer)
		writeString(&buf, o.Message)

	case *Tree:
		writeUvarint(&buf, uint64(len(o.Entries)))
		for _, entry := range o.Entries {
			writeString(&buf, entry.Name)
			buf.WriteByte(byte(entry.Kind))
			writeHash(&buf, entry.Id)
			writeHash(&buf, entry.Metadata)
		}

	case *Feature:
		writeBytes(&buf, o.Values)

	case *FeatureType:
		writeString(&buf, o.Name)
		writeBytes(&buf, o.Spec)

	case *Tag:
		writeHash(&buf, o.Object)
		writeString(&buf, o.Name)
		writeString(&buf, o.Message)
		writeSignature(&buf, o.Tagger)

	default:
		panic(fmt.Sprintf("unencodable object kind %s", obj.Kind()))
	}

	return buf.Bytes()
}

// Decode parses the canonical byte form back into an object. The returned
// object's id is the hash of data.
func Decode(data []byte) (Object, error) {
	if len(data) < 2 || data[0] != codecVersion {
		return nil, ErrCorruptObject
	}

	id := hash.Of(data)
	r := &reader{data: data[2:]}

	var obj Object
	switch Kind(data[1]) {
	case KindCommit:
		c := &Commit{id: id}
		c.Tree = r.readHash()
		n := r.readUvarint()
		for i := uint64(0); i < n; i++ {
			c.Parents = append(c.Parents, r.readHash())
		}
		c.Author = r.readSignature()
		c.Committer = r.readSignature()
		c.Message = r.readString()
		obj = c

	case KindTree:
		t := &Tree{id: id}
		n := r.readUvarint()
		for i := uint64(0); i < n; i++ {
			entry := TreeEntry{}
			entry.Name = r.readString()
			entry.Kind = Kind(r.readByte())
			entry.Id = r.readHash()
			entry.Metadata = r.readHash()
			t.Entries = append(t.Entries, entry)
		}
		obj = t

	case KindFeature:
		obj = &Feature{id: id, Values: r.readBytes()}

	case KindFeatureType:
		ft := &FeatureType{id: id}
		ft.Name = r.readString()
		ft.Spec = r.readBytes()
		obj = ft

	case KindTag:
		t := &Tag{id: id}
		t.Object = r.readHash()
		t.Name = r.readString()
		t.Message = r.readString()
		t.Tagger = r.readSignature()
		obj = t

	default:
		return nil, fmt.Errorf("%w: kind %d", ErrCorruptObject, data[1])
	}

	if r.err != nil || len(r.data) != 0 {
		return nil, ErrCorruptObject
	}

	return obj, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeVarint(buf *bytes.Buffer, v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeBytes(buf *bytes.Buffer, data []byte) {
	writeUvarint(buf, uint64(len(data)))
	buf.Write(data)
}

func writeString(buf *bytes.Buffer, s string) {
	writeBytes(buf, []byte(s))
}

func writeHash(buf *bytes.Buffer, h hash.Hash) {
	buf.Write(h[:])
}

func writeSignature(buf *bytes.Buffer, sig Signature) {
	writeString(buf, sig.Name)
	writeString(buf, sig.Email)
	writeVarint(buf, sig.When)
	writeVarint(buf, int64(sig.TZOffset))
}

type reader struct {
	data []byte
	err  error
}

func (r *reader) fail() {
	if r.err == nil {
		r.err = ErrCorruptObject
	}
	r.data = nil
}

func (r *reader) readByte() byte {
	if len(r.data) < 1 {
		r.fail()
		return 0
	}

	b := r.data[0]
	r.data = r.data[1:]
	return b
}

func (r *reader) readUvarint() uint64 {
	v, n := binary.Uvarint(r.data)

	if n <= 0 {
		r.fail()
		return 0
	}

	r.data = r.data[n:]
	return v
}

func (r *reader) readVarint() int64 {
	v, n := binary.Varint(r.data)

	if n <= 0 {
		r.fail()
		return 0
	}

	r.data = r.data[n:]
	return v
}

func (r *reader) readBytes() []byte {
	n := r.readUvarint()

	if uint64(len(r.data)) < n {
		r.fail()
		return nil
	}

	data := append([]byte(nil), r.data[:n]...)
	r.data = r.data[n:]
	return data
}

func (r *reader) readString() string {
	return string(r.readBytes())
}

func (r *reader) readHash() hash.Hash {
	if len(r.data) < hash.ByteLen {
		r.fail()
		return hash.Null
	}

	h, _ := hash.New(r.data[:hash.ByteLen])
	r.data = r.data[hash.ByteLen:]
	return h
}

func (r *reader) readSignature() Signature {
	return Signature{
		Name:     r.readString(),
		Email:    r.readString(),
		When:     r.readVarint(),
		TZOffset: int32(r.readVarint()),
	}
}
