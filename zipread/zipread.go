// Package zipread extracts members from a ZIP byte buffer by scanning
// for local file headers. No central directory is consulted: inputs are
// single-file .mxl archives, often truncated or padded, and discovering
// entries from local headers alone survives most of that damage.
package zipread

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/lumikey/lumikey/model"
)

const (
	localHeaderSig = 0x04034b50
	localHeaderLen = 30
	methodStored   = 0
	methodDeflated = 8
)

// Entry is one decompressed archive member.
type Entry struct {
	Name string
	Data []byte
}

// Scan walks buf looking for local-file-header records and returns the
// members it can recover. A member that fails to inflate is returned
// with its raw bytes plus a diagnostic; the scan itself never fails.
func Scan(buf []byte) ([]Entry, []model.Diagnostic) {
	var entries []Entry
	var diags []model.Diagnostic

	offset := 0
	for offset+4 <= len(buf) {
		if binary.LittleEndian.Uint32(buf[offset:offset+4]) != localHeaderSig {
			offset++
			continue
		}
		if offset+localHeaderLen > len(buf) {
			break
		}

		method := binary.LittleEndian.Uint16(buf[offset+8 : offset+10])
		compSize := int(binary.LittleEndian.Uint32(buf[offset+18 : offset+22]))
		nameLen := int(binary.LittleEndian.Uint16(buf[offset+26 : offset+28]))
		extraLen := int(binary.LittleEndian.Uint16(buf[offset+28 : offset+30]))

		nameStart := offset + localHeaderLen
		dataStart := nameStart + nameLen + extraLen
		if dataStart > len(buf) {
			break
		}
		name := string(buf[nameStart : nameStart+nameLen])

		dataEnd := dataStart + compSize
		if dataEnd > len(buf) {
			diags = append(diags, model.Diag(model.DiagSkippedMember,
				fmt.Sprintf("member %v is truncated", name)))
			dataEnd = len(buf)
		}
		data := buf[dataStart:dataEnd]

		if method == methodDeflated {
			inflated, err := inflateRaw(data)
			if err != nil {
				diags = append(diags, model.Diag(model.DiagDecompressionFailed,
					fmt.Sprintf("could not inflate %v: %v", name, err)))
			} else {
				data = inflated
			}
		} else if method != methodStored {
			diags = append(diags, model.Diag(model.DiagSkippedMember,
				fmt.Sprintf("member %v uses unsupported compression method %v", name, method)))
		}

		entries = append(entries, Entry{Name: name, Data: data})
		offset = dataEnd
	}

	return entries, diags
}

// inflateRaw decompresses a raw DEFLATE stream (no zlib or gzip
// wrapper), which is how ZIP stores method-8 members.
func inflateRaw(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return out, nil
}
