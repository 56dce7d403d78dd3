// Package database implements the content-addressable object store: blobs,
// trees, and commits serialized in git's loose object format and addressed
// by the SHA-1 of their serialization.
package database

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Object is anything the database can store.
type Object interface {
	Type() string
	Bytes() []byte
}

// Content returns the serialized form of an object: a `<type> <size>\0`
// header followed by the object body.
func Content(o Object) []byte {
	body := o.Bytes()
	content := []byte(fmt.Sprintf("%s %d\x00", o.Type(), len(body)))
	return append(content, body...)
}

// OID returns the 40-char hex object id of an object.
func OID(o Object) string {
	sum := sha1.Sum(Content(o))
	return hex.EncodeToString(sum[:])
}

// ShortOID abbreviates an object id for display.
func ShortOID(oid string) string {
	if len(oid) < 7 {
		return oid
	}
	return oid[:7]
}
